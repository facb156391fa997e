package remover

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/stretchr/testify/require"
)

// slowRemover finishes later items first and fails every odd index.
type slowRemover struct {
	inFlight    int32
	maxInFlight int32
	mu          sync.Mutex
	starts      []time.Time
}

func (s *slowRemover) AutoRemove(ctx context.Context, req cutout.Request, plan Plan) (cutout.Result, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		m := atomic.LoadInt32(&s.maxInFlight)
		if n <= m || atomic.CompareAndSwapInt32(&s.maxInFlight, m, n) {
			break
		}
	}
	s.mu.Lock()
	s.starts = append(s.starts, time.Now())
	s.mu.Unlock()

	index := int(req.Image[0])
	time.Sleep(time.Duration(10-index) * time.Millisecond)
	if index%2 == 1 {
		return cutout.Result{}, errs.ForProvider(errs.KindRateLimited, "a", 429, "slow")
	}
	cost := 0.1
	if index == 4 {
		cost = 0
	}
	return cutout.Result{Success: true, Provider: "a", Output: req.Image, Cost: cost}, nil
}

func indexedRequests(n int) []cutout.Request {
	reqs := make([]cutout.Request, n)
	for i := range reqs {
		reqs[i] = cutout.Request{Image: []byte{byte(i)}}
	}
	return reqs
}

func TestProcessBatchKeepsInputOrder(t *testing.T) {
	r := &slowRemover{}
	b := NewBatcher(r, 5, 0)
	out := b.ProcessBatch(context.Background(), indexedRequests(10), 3, Plan{})

	require.Equal(t, 10, out.Total)
	require.Equal(t, 5, out.Successful)
	require.Equal(t, 5, out.Failed)
	require.Equal(t, out.Total, out.Successful+out.Failed)
	require.InDelta(t, 0.4, out.EstimatedCost, 1e-9)
	require.LessOrEqual(t, atomic.LoadInt32(&r.maxInFlight), int32(3))
	for i, item := range out.Items {
		require.Equal(t, i, item.Index)
		if i%2 == 1 {
			require.False(t, item.Succeed())
			require.Equal(t, errs.KindRateLimited, item.Error.Kind)
			continue
		}
		require.True(t, item.Succeed())
		require.Equal(t, []byte{byte(i)}, item.Result.Output)
	}
}

func TestProcessBatchDelayBetweenGroups(t *testing.T) {
	r := &slowRemover{}
	b := NewBatcher(r, 2, 150*time.Millisecond)
	start := time.Now()
	out := b.ProcessBatch(context.Background(), indexedRequests(4), 0, Plan{})
	require.Equal(t, 4, out.Total)
	require.Len(t, r.starts, 4)

	// one pause between the two groups, none after the last
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	require.Less(t, elapsed, 300*time.Millisecond)
}

func TestProcessBatchCanceledBetweenGroups(t *testing.T) {
	r := &slowRemover{}
	b := NewBatcher(r, 2, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	out := b.ProcessBatch(ctx, indexedRequests(5), 2, Plan{})

	require.Equal(t, 5, out.Total)
	require.Equal(t, 1, out.Successful)
	require.Equal(t, 4, out.Failed)
	for i := 2; i < 5; i++ {
		require.Equal(t, i, out.Items[i].Index)
		require.Contains(t, out.Items[i].Error.Message, context.Canceled.Error())
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	out := NewBatcher(&slowRemover{}, 3, time.Hour).ProcessBatch(context.Background(), nil, 0, Plan{})
	require.Equal(t, BatchOutcome{Items: []ItemResult{}}, out)
}

func TestProcessBatchNotifies(t *testing.T) {
	var got BatchOutcome
	b := NewBatcher(&slowRemover{}, 3, 0)
	b.Register(observerFunc(func(event string, data interface{}) {
		if event == consts.EventBatchDone {
			got = data.(BatchOutcome)
		}
	}))
	b.ProcessBatch(context.Background(), indexedRequests(2), 0, Plan{})
	require.Equal(t, 2, got.Total)
}

func TestProcessBatchWithOrchestrator(t *testing.T) {
	a := &fakeProvider{name: "a", cost: 0.2}
	o := fakeOrchestrator(Config{MaxInputSize: 2}, a)
	reqs := []cutout.Request{{Image: []byte{1}}, {Image: []byte{1, 2, 3}}, {Image: []byte{2}}}
	out := NewBatcher(o, 3, 0).ProcessBatch(context.Background(), reqs, 0, Plan{})

	require.Equal(t, 2, out.Successful)
	require.Equal(t, errs.KindSizeExceeded, out.Items[1].Error.Kind)
	require.InDelta(t, 0.4, out.EstimatedCost, 1e-9)
}

type observerFunc func(event string, data interface{})

func (f observerFunc) Update(event string, data interface{}) { f(event, data) }

package remover

import (
	"context"
	"time"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/observer"
	"golang.org/x/sync/errgroup"
)

type Remover interface {
	AutoRemove(ctx context.Context, req cutout.Request, plan Plan) (cutout.Result, error)
}

type ItemError struct {
	Kind    errs.Kind `json:"kind"`
	Message string    `json:"message"`
}

type ItemResult struct {
	Index  int            `json:"index"`
	Result *cutout.Result `json:"result,omitempty"`
	Error  *ItemError     `json:"error,omitempty"`
}

func (r ItemResult) Succeed() bool {
	return r.Result != nil
}

type BatchOutcome struct {
	Total         int          `json:"total"`
	Successful    int          `json:"successful"`
	Failed        int          `json:"failed"`
	Items         []ItemResult `json:"items"`
	EstimatedCost float64      `json:"estimated_cost"`
}

// Batcher runs AutoRemove over a list in fixed-size groups, pausing between groups.
type Batcher struct {
	observer.Subject

	remover     Remover
	concurrency int
	delay       time.Duration
}

func NewBatcher(remover Remover, concurrency int, delay time.Duration) *Batcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batcher{remover: remover, concurrency: concurrency, delay: delay}
}

// ProcessBatch never fails as a whole. Items keep their input position whatever order
// they complete in. A concurrency below 1 uses the batcher default.
func (b *Batcher) ProcessBatch(ctx context.Context, reqs []cutout.Request, concurrency int, plan Plan) BatchOutcome {
	if concurrency < 1 {
		concurrency = b.concurrency
	}
	items := make([]ItemResult, len(reqs))
	for start := 0; start < len(reqs); start += concurrency {
		if start > 0 && !b.pause(ctx) {
			b.abandon(items, start, ctx.Err())
			break
		}
		end := min(start+concurrency, len(reqs))
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				items[i] = b.runOne(ctx, i, reqs[i], plan)
				return nil
			})
		}
		_ = g.Wait()
		logs.Logger.Debug().Int("from", start).Int("to", end).Msg("batch group settled")
	}

	outcome := BatchOutcome{Total: len(reqs), Items: items}
	for _, item := range items {
		if item.Succeed() {
			outcome.Successful++
			outcome.EstimatedCost += item.Result.Cost
		} else {
			outcome.Failed++
		}
	}
	b.Notify(consts.EventBatchDone, outcome)
	return outcome
}

func (b *Batcher) runOne(ctx context.Context, index int, req cutout.Request, plan Plan) ItemResult {
	res, err := b.remover.AutoRemove(ctx, req, plan)
	if err != nil {
		logs.Logger.Warn().Int("index", index).Err(err).Msg("batch item failed")
		return ItemResult{Index: index, Error: itemError(err)}
	}
	return ItemResult{Index: index, Result: &res}
}

// pause waits the inter-group delay and reports whether the batch should go on.
func (b *Batcher) pause(ctx context.Context) bool {
	if b.delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(b.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (b *Batcher) abandon(items []ItemResult, from int, err error) {
	logs.Logger.Warn().Int("from", from).Err(err).Msg("batch canceled, remaining items not started")
	for i := from; i < len(items); i++ {
		items[i] = ItemResult{Index: i, Error: &ItemError{Kind: errs.KindProviderFailure, Message: err.Error()}}
	}
}

func itemError(err error) *ItemError {
	kind := errs.KindOf(err)
	if kind == "" {
		kind = errs.KindProviderFailure
	}
	return &ItemError{Kind: kind, Message: err.Error()}
}

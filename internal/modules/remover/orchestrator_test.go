package remover

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/clipdrop"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/photoroom"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/removebg"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/tools"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	kind  cutout.ProviderKind
	cost  float64
	err   error
	calls int32
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) Kind() cutout.ProviderKind { return f.kind }
func (f *fakeProvider) CostPerImage() float64     { return f.cost }

func (f *fakeProvider) TryRemove(ctx context.Context, req cutout.Request) (cutout.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return cutout.Result{Provider: f.name}, f.err
	}
	return cutout.Result{Success: true, Provider: f.name, Output: req.Image, ContentType: "image/png", Cost: f.cost}, nil
}

func (f *fakeProvider) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

type attempts struct {
	sync.Mutex
	list []cutout.Attempt
}

func (a *attempts) Update(event string, data interface{}) {
	if event != consts.EventProviderAttempt {
		return
	}
	a.Lock()
	defer a.Unlock()
	a.list = append(a.list, data.(cutout.Attempt))
}

func fakeOrchestrator(cfg Config, providers ...*fakeProvider) *Orchestrator {
	var remotes []cutout.ProviderDescriptor
	var locals []cutout.LocalModelDescriptor
	byName := map[string]cutout.Provider{}
	for _, p := range providers {
		if p.kind == cutout.KindLocal {
			locals = append(locals, cutout.LocalModelDescriptor{Name: p.name})
		} else {
			remotes = append(remotes, cutout.ProviderDescriptor{Name: p.name, Credential: "k", CostPerImage: p.cost})
		}
		byName[p.name] = p
	}
	return NewOrchestrator(cutout.NewRegistry(remotes, locals), byName, ai.NewBanList(), cfg)
}

func testImage(t *testing.T) []byte {
	img := imaging.New(8, 8, color.White)
	img.Set(4, 4, color.Black)
	b, _, err := tools.EncodeImage(img, "png", 0)
	require.NoError(t, err)
	return b
}

func TestAutoRemoveShortCircuit(t *testing.T) {
	a := &fakeProvider{name: "a", cost: 0.1, err: errs.ForProvider(errs.KindProviderFailure, "a", 500, "boom")}
	b := &fakeProvider{name: "b", cost: 0.2}
	c := &fakeProvider{name: "c", cost: 0.3}
	o := fakeOrchestrator(Config{}, a, b, c)
	rec := &attempts{}
	o.Register(rec)

	res, err := o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{Order: []string{"a", "b", "c"}})
	require.NoError(t, err)
	require.Equal(t, "b", res.Provider)
	require.Equal(t, 0.2, res.Cost)
	require.Equal(t, 1, a.Calls())
	require.Equal(t, 1, b.Calls())
	require.Equal(t, 0, c.Calls())

	require.Len(t, rec.list, 2)
	require.Equal(t, 500, rec.list[0].StatusCode)
	require.False(t, rec.list[0].Succeed())
	require.True(t, rec.list[1].Succeed())
}

func TestAutoRemoveSizeExceeded(t *testing.T) {
	a := &fakeProvider{name: "a"}
	local := &fakeProvider{name: "u2net", kind: cutout.KindLocal}
	o := fakeOrchestrator(Config{MaxInputSize: 16, FallbackToLocal: true}, local, a)

	_, err := o.AutoRemove(context.Background(), cutout.Request{Image: make([]byte, 17)}, Plan{})
	require.True(t, errors.Is(err, errs.SizeExceeded))
	require.Equal(t, 0, a.Calls())
	require.Equal(t, 0, local.Calls())

	_, err = o.AutoRemove(context.Background(), cutout.Request{Image: make([]byte, 8)}, Plan{MaxInputSize: 4})
	require.True(t, errors.Is(err, errs.SizeExceeded))
}

func TestAutoRemovePixelLimit(t *testing.T) {
	a := &fakeProvider{name: "a"}
	local := &fakeProvider{name: "u2net", kind: cutout.KindLocal}
	o := fakeOrchestrator(Config{MaxInputPixels: 63, FallbackToLocal: true}, local, a)

	// testImage is 8x8
	_, err := o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{})
	require.Equal(t, errs.KindSizeExceeded, errs.KindOf(err))
	_, err = o.RemoveWithService(context.Background(), "a", cutout.Request{Image: testImage(t)})
	require.Equal(t, errs.KindSizeExceeded, errs.KindOf(err))
	require.Equal(t, 0, a.Calls())
	require.Equal(t, 0, local.Calls())

	o = fakeOrchestrator(Config{MaxInputPixels: 64}, local, a)
	_, err = o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{})
	require.NoError(t, err)
}

// Basic transparency needs pixels, so input no decoder understands stays an error.
func TestAutoRemoveFallbackUndecodable(t *testing.T) {
	a := &fakeProvider{name: "a", err: errs.ForProvider(errs.KindProviderFailure, "a", 500, "boom")}
	o := fakeOrchestrator(Config{FallbackToLocal: true}, a)

	res, err := o.AutoRemove(context.Background(), cutout.Request{Image: []byte("plain text, not an image")}, Plan{})
	require.Equal(t, errs.KindDecodeError, errs.KindOf(err))
	require.False(t, res.Success)
	require.Equal(t, consts.Basic.String(), res.Provider)
	require.Equal(t, 1, a.Calls())
}

func TestAutoRemoveTotality(t *testing.T) {
	failing := []*fakeProvider{
		{name: "u2net", kind: cutout.KindLocal, err: errs.ForProvider(errs.KindProviderFailure, "u2net", 0, "no separable background")},
		{name: "a", err: errs.ForProvider(errs.KindRateLimited, "a", 429, "slow")},
		{name: "b", err: errs.ForProvider(errs.KindPaymentRequired, "b", 402, "pay")},
		{name: "c", err: errs.ForProvider(errs.KindProviderFailure, "c", 503, "down")},
	}
	o := fakeOrchestrator(Config{FallbackToLocal: true}, failing...)
	for _, order := range [][]string{nil, {"c"}, {"missing", "a"}, {}} {
		res, err := o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{Order: order})
		require.NoError(t, err)
		require.True(t, res.Success)
		require.Equal(t, consts.Basic.String(), res.Provider)
		require.Equal(t, 0.0, res.Cost)
		require.NotEmpty(t, res.Output)
		require.NotEmpty(t, res.Note)
	}
}

func TestAutoRemoveAllFailed(t *testing.T) {
	a := &fakeProvider{name: "a", err: errs.ForProvider(errs.KindRateLimited, "a", 429, "slow")}
	b := &fakeProvider{name: "b", err: errs.ForProvider(errs.KindProviderFailure, "b", 500, "boom")}
	o := fakeOrchestrator(Config{}, a, b)

	_, err := o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{Order: []string{"a", "b", "nope"}})
	require.True(t, errors.Is(err, errs.AllProvidersFailed))
	require.True(t, errors.Is(err, errs.RateLimited))
	require.True(t, errors.Is(err, errs.UnknownProvider))
	require.Equal(t, errs.KindAllProvidersFailed, errs.KindOf(err))
}

func TestAutoRemoveBansProvider(t *testing.T) {
	a := &fakeProvider{name: "a", err: errs.ForProvider(errs.KindPaymentRequired, "a", 402, "pay")}
	b := &fakeProvider{name: "b"}
	o := fakeOrchestrator(Config{BanDuration: time.Minute}, a, b)
	plan := Plan{Order: []string{"a", "b"}}

	_, err := o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, plan)
	require.NoError(t, err)
	_, err = o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, plan)
	require.NoError(t, err)
	require.Equal(t, 1, a.Calls())
	require.Equal(t, 2, b.Calls())

	// an explicit request still reaches a banned provider
	_, err = o.RemoveWithService(context.Background(), "a", cutout.Request{Image: testImage(t)})
	require.True(t, errors.Is(err, errs.PaymentRequired))
	require.Equal(t, 2, a.Calls())
}

func TestRemoveWithService(t *testing.T) {
	a := &fakeProvider{name: "a", cost: 0.5}
	o := fakeOrchestrator(Config{FallbackToLocal: true}, a)

	res, err := o.RemoveWithService(context.Background(), "a", cutout.Request{Image: testImage(t)})
	require.NoError(t, err)
	require.Equal(t, 0.5, res.Cost)

	_, err = o.RemoveWithService(context.Background(), "rembg", cutout.Request{Image: testImage(t)})
	require.True(t, errors.Is(err, errs.UnknownProvider))
}

// remoteOrchestrator wires the real remote clients against a single test server.
func remoteOrchestrator(srvURL string, keys map[string]string, cfg Config) *Orchestrator {
	descs := []cutout.ProviderDescriptor{
		removebg.Descriptor(keys["removebg"]),
		clipdrop.Descriptor(keys["clipdrop"]),
		photoroom.Descriptor(keys["photoroom"]),
	}
	byName := map[string]cutout.Provider{}
	for i := range descs {
		descs[i].Endpoint = srvURL + "/" + descs[i].Name
	}
	byName["removebg"] = removebg.New(descs[0], nil)
	byName["clipdrop"] = clipdrop.New(descs[1], nil)
	byName["photoroom"] = photoroom.New(descs[2], nil)
	return NewOrchestrator(cutout.NewRegistry(descs, nil), byName, ai.NewBanList(), cfg)
}

func TestClipdropUnconfiguredMakesNoCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	o := remoteOrchestrator(srv.URL, map[string]string{}, Config{})

	_, err := o.RemoveWithService(context.Background(), "clipdrop", cutout.Request{Image: testImage(t)})
	require.True(t, errors.Is(err, errs.Unconfigured))
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestAllRemotesRateLimitedFallsBackToBasic(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Rate limit exceeded"}]}`))
	}))
	defer srv.Close()
	keys := map[string]string{"removebg": "a", "clipdrop": "b", "photoroom": "c"}
	o := remoteOrchestrator(srv.URL, keys, Config{FallbackToLocal: true, RateLimitCooldown: time.Minute})

	res, err := o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{})
	require.NoError(t, err)
	require.Equal(t, consts.Basic.String(), res.Provider)
	require.Equal(t, 0.0, res.Cost)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// all three are cooling down now
	_, err = o.AutoRemove(context.Background(), cutout.Request{Image: testImage(t)}, Plan{})
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

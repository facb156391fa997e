// Package remover turns the provider catalog into the removal pipeline: ordered fallback
// across providers, batches and background replacement.
package remover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/local"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/observer"
	"github.com/reusedev/cutout-hub/tools"
)

// BanList is consulted before every provider in AutoRemove.
type BanList interface {
	Ban(provider string, d time.Duration)
	Banned(provider string) bool
}

type Config struct {
	MaxInputSize int64
	// MaxInputPixels rejects images by header dimensions before any provider sees them.
	MaxInputPixels    int64
	FallbackToLocal   bool
	BanDuration       time.Duration
	RateLimitCooldown time.Duration
	// PriorityOrder replaces the registry default order when set.
	PriorityOrder []string
}

// Plan is the per-call part of AutoRemove. Zero values fall back to Config.
type Plan struct {
	Order        []string
	MaxInputSize int64
}

type Orchestrator struct {
	observer.Subject

	registry  *cutout.Registry
	providers map[string]cutout.Provider
	bans      BanList
	cfg       Config
}

func NewOrchestrator(registry *cutout.Registry, providers map[string]cutout.Provider, bans BanList, cfg Config) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		providers: providers,
		bans:      bans,
		cfg:       cfg,
	}
}

func (o *Orchestrator) Registry() *cutout.Registry {
	return o.registry
}

func (o *Orchestrator) Order(plan Plan) []string {
	if len(plan.Order) > 0 {
		return plan.Order
	}
	if len(o.cfg.PriorityOrder) > 0 {
		return o.cfg.PriorityOrder
	}
	return o.registry.DefaultOrder()
}

// AutoRemove tries each provider of the plan in order and returns the first success.
// Skipped and failed providers are published to observers and never abort the walk.
// With FallbackToLocal set every decodable image gets a result.
func (o *Orchestrator) AutoRemove(ctx context.Context, req cutout.Request, plan Plan) (cutout.Result, error) {
	if err := o.checkSize(req, plan.MaxInputSize); err != nil {
		return cutout.Result{}, err
	}
	order := o.Order(plan)
	failures := make([]error, 0, len(order))
	for _, name := range order {
		provider, err := o.resolve(name, true)
		if err != nil {
			logs.Logger.Debug().Str("provider", name).Err(err).Msg("provider skipped")
			o.publish(cutout.Attempt{Provider: name, Skipped: true, Err: err, At: time.Now()})
			failures = append(failures, err)
			continue
		}
		res, err := o.try(ctx, provider, req)
		if err == nil {
			return res, nil
		}
		failures = append(failures, err)
	}
	if o.cfg.FallbackToLocal {
		out, err := local.BasicTransparency(req.Image)
		if err != nil {
			return cutout.Result{Provider: consts.Basic.String()}, err
		}
		logs.Logger.Warn().Int("providers", len(order)).Msg("all providers failed, basic transparency applied")
		return cutout.Result{
			Success:     true,
			Provider:    consts.Basic.String(),
			Output:      out,
			ContentType: "image/png",
			Cost:        0,
			Note:        fmt.Sprintf("%d providers failed, near-white pixels made transparent", len(order)),
		}, nil
	}
	return cutout.Result{}, &errs.Error{
		Kind:    errs.KindAllProvidersFailed,
		Message: fmt.Sprintf("%d providers tried", len(order)),
		Err:     errors.Join(failures...),
	}
}

// RemoveWithService calls exactly one provider, ignoring bans and without any fallback.
func (o *Orchestrator) RemoveWithService(ctx context.Context, name string, req cutout.Request) (cutout.Result, error) {
	if err := o.checkSize(req, 0); err != nil {
		return cutout.Result{}, err
	}
	provider, err := o.resolve(name, false)
	if err != nil {
		return cutout.Result{Provider: name}, err
	}
	return o.try(ctx, provider, req)
}

func (o *Orchestrator) checkSize(req cutout.Request, limit int64) error {
	if limit <= 0 {
		limit = o.cfg.MaxInputSize
	}
	if limit > 0 && int64(len(req.Image)) > limit {
		return errs.New(errs.KindSizeExceeded, "image is %d bytes, limit is %d", len(req.Image), limit)
	}
	if err := tools.CheckPixels(req.Image, o.cfg.MaxInputPixels); err != nil {
		return errs.Wrap(errs.KindSizeExceeded, err, "image dimensions")
	}
	return nil
}

func (o *Orchestrator) resolve(name string, checkBan bool) (cutout.Provider, error) {
	if !o.registry.IsLocal(name) {
		if _, err := o.registry.Remote(name); err != nil {
			return nil, err
		}
	}
	provider, ok := o.providers[name]
	if !ok {
		return nil, errs.ForProvider(errs.KindUnknownProvider, name, 0, "no client registered")
	}
	if checkBan && o.bans != nil && o.bans.Banned(name) {
		return nil, errs.ForProvider(errs.KindProviderFailure, name, 0, "temporarily disabled")
	}
	return provider, nil
}

func (o *Orchestrator) try(ctx context.Context, provider cutout.Provider, req cutout.Request) (cutout.Result, error) {
	start := time.Now()
	res, err := provider.TryRemove(ctx, req)
	if err == nil && !res.Success {
		err = errs.ForProvider(errs.KindProviderFailure, provider.Name(), 0, "no output")
	}
	attempt := cutout.Attempt{
		Provider: provider.Name(),
		Kind:     provider.Kind(),
		Duration: time.Since(start),
		Err:      err,
		At:       start,
	}
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			attempt.StatusCode = e.StatusCode
		}
		o.penalize(provider.Name(), err)
		logs.Logger.Warn().Str("provider", provider.Name()).Err(err).Msg("provider failed")
	} else {
		attempt.Cost = res.Cost
	}
	o.publish(attempt)
	return res, err
}

func (o *Orchestrator) penalize(name string, err error) {
	if o.bans == nil {
		return
	}
	switch errs.KindOf(err) {
	case errs.KindPaymentRequired:
		if o.cfg.BanDuration > 0 {
			o.bans.Ban(name, o.cfg.BanDuration)
		}
	case errs.KindRateLimited:
		if o.cfg.RateLimitCooldown > 0 {
			o.bans.Ban(name, o.cfg.RateLimitCooldown)
		}
	}
}

func (o *Orchestrator) publish(a cutout.Attempt) {
	o.Notify(consts.EventProviderAttempt, a)
}

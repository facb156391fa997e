package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/dao"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/model"
	"github.com/reusedev/cutout-hub/internal/modules/pdf"
)

const maxErrorMessage = 2000

// Recorder persists attempts to mysql from a single background goroutine.
// Update never blocks: when the buffer is full the record is dropped and logged.
type Recorder struct {
	records chan interface{}
}

func NewRecorder(buffer int) *Recorder {
	return &Recorder{records: make(chan interface{}, buffer)}
}

func (r *Recorder) Update(event string, data interface{}) {
	var record interface{}
	switch event {
	case consts.EventProviderAttempt:
		a, ok := data.(cutout.Attempt)
		if !ok {
			return
		}
		record = providerRecord(a)
	case consts.EventPDFAttempt:
		a, ok := data.(pdf.Attempt)
		if !ok {
			return
		}
		record = &model.CompressionHistory{
			Method:           a.Method.String(),
			Quality:          string(a.Quality),
			InputSize:        a.InputSize,
			OutputSize:       a.OutputSize,
			ReductionPercent: a.ReductionPercent,
			WithinBudget:     a.WithinBudget,
			CreatedAt:        time.Now(),
		}
	default:
		return
	}
	select {
	case r.records <- record:
	default:
		logs.Logger.Warn().Str("event", event).Msg("history buffer full, record dropped")
	}
}

// Run writes records until ctx is done, then flushes what is still buffered.
func (r *Recorder) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case record := <-r.records:
				r.save(record)
			case <-ctx.Done():
				for {
					select {
					case record := <-r.records:
						r.save(record)
					default:
						return
					}
				}
			}
		}
	}()
}

func (r *Recorder) save(record interface{}) {
	var err error
	switch v := record.(type) {
	case *model.ProviderInvokeHistory:
		err = dao.CreateProviderInvokeHistory(v)
	case *model.CompressionHistory:
		err = dao.CreateCompressionHistory(v)
	}
	if err != nil {
		logs.Logger.Err(err).Msg("save history failed")
	}
}

func providerRecord(a cutout.Attempt) *model.ProviderInvokeHistory {
	record := &model.ProviderInvokeHistory{
		Provider:   a.Provider,
		Kind:       a.Kind.String(),
		Skipped:    a.Skipped,
		StatusCode: a.StatusCode,
		Cost:       a.Cost,
		DurationMs: a.Duration.Milliseconds(),
		CreatedAt:  a.At,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if a.Err != nil {
		record.ErrorKind = string(errs.KindOf(a.Err))
		var e *errs.Error
		if errors.As(a.Err, &e) && e.Message != "" {
			record.ErrorMessage = e.Message
		} else {
			record.ErrorMessage = a.Err.Error()
		}
		if len(record.ErrorMessage) > maxErrorMessage {
			record.ErrorMessage = record.ErrorMessage[:maxErrorMessage]
		}
	}
	return record
}

package main

import (
	"github.com/reusedev/cutout-hub/config"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai"
	"github.com/reusedev/cutout-hub/internal/modules/pdf"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
	"github.com/reusedev/cutout-hub/tools"
)

// app holds the long lived components shared by the server and the cli commands.
type app struct {
	bans         *ai.BanList
	orchestrator *remover.Orchestrator
	batcher      *remover.Batcher
	compositor   *remover.Compositor
	compressor   *pdf.Compressor
}

func newApp(cfg *config.Config) (*app, error) {
	providers, err := ai.BuildProviders(cfg)
	if err != nil {
		return nil, err
	}
	tools.MaxImagePixels = cfg.MaxInputPixels
	bans := ai.NewBanList()
	o := remover.NewOrchestrator(providers.Registry, providers.ByName, bans, remover.Config{
		MaxInputSize:      cfg.MaxInputSize,
		MaxInputPixels:    cfg.MaxInputPixels,
		FallbackToLocal:   cfg.FallbackToLocal,
		BanDuration:       config.Duration(cfg.BanDuration),
		RateLimitCooldown: config.Duration(cfg.RateLimitCooldown),
		PriorityOrder:     cfg.PriorityOrder,
	})
	compressor := pdf.NewCompressor(pdf.Config{
		TempDir: cfg.PDF.TempDir,
		Methods: []pdf.Method{
			pdf.Ghostscript{Path: cfg.PDF.GhostscriptPath},
			pdf.QPDF{Path: cfg.PDF.QPDFPath},
		},
		Defaults: pdf.CompressOptions{
			TargetMaxSize: cfg.PDF.TargetMaxSize,
			StartQuality:  pdf.Quality(cfg.PDF.StartingQuality),
			Method:        consts.PDFMethod(cfg.PDF.Method),
		},
	}, pdf.ExecRunner{Timeout: config.Duration(cfg.PDF.Timeout)})
	return &app{
		bans:         bans,
		orchestrator: o,
		batcher:      remover.NewBatcher(o, cfg.Batch.Concurrency, config.Duration(cfg.Batch.Delay)),
		compositor:   remover.NewCompositor(o),
		compressor:   compressor,
	}, nil
}

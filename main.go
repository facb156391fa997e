package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/reusedev/cutout-hub/config"
	"github.com/reusedev/cutout-hub/internal/components/mysql"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/cache"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/model"
	"github.com/reusedev/cutout-hub/internal/modules/monitor"
	"github.com/reusedev/cutout-hub/internal/modules/pdf"
	"github.com/reusedev/cutout-hub/internal/modules/queue"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
	"github.com/reusedev/cutout-hub/internal/modules/storage/ali"
	"github.com/reusedev/cutout-hub/internal/modules/storage/local"
	"github.com/reusedev/cutout-hub/internal/service/http"
	"github.com/reusedev/cutout-hub/internal/service/http/handler"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/request"
	"github.com/reusedev/cutout-hub/tools"
	"github.com/spf13/cobra"
)

var (
	configPath string
	httpPort   string
)

func main() {
	root := &cobra.Command{
		Use:           "cutout-hub",
		Short:         "Background removal and pdf compression service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yml", "config file path")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the http api",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&httpPort, "http-port", ":80", "listen http port")

	root.AddCommand(serve, removeCommand(), compressCommand())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	config.Init(configPath)
	logs.InitLogger()
	cfg := config.GConfig

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	a.bans.Run(ctx, time.Minute)

	metrics := monitor.NewMetrics()
	a.orchestrator.Register(metrics)
	a.batcher.Register(metrics)
	a.compressor.Register(metrics)

	if cfg.History.Enabled {
		mysql.InitMySQL(cfg.MySQL)
		if err := mysql.DB.AutoMigrate(&model.ProviderInvokeHistory{}, &model.CompressionHistory{}); err != nil {
			return err
		}
		recorder := monitor.NewRecorder(1024)
		recorder.Run(ctx, wg)
		a.orchestrator.Register(recorder)
		a.compressor.Register(recorder)
	}

	deps := handler.Deps{
		Orchestrator:   a.orchestrator,
		Batcher:        a.batcher,
		Compositor:     a.compositor,
		Compressor:     a.compressor,
		Bans:           a.bans,
		Queue:          queue.NewTaskQueue(64),
		Tasks:          cache.TaskCacheManager(),
		TaskTTL:        config.Duration(cfg.TaskResultTTL),
		MaxInputSize:   cfg.MaxInputSize,
		MaxPDFSize:     cfg.MaxInputSize * 4,
		URLExpires:     config.Duration(cfg.URLExpires),
		HistoryEnabled: cfg.History.Enabled,
	}
	if cfg.StorageEnabled {
		ali.InitOSS(cfg.AliOss)
		deps.Uploader = ali.OssClient
	}
	deps.Queue.Run(ctx, wg)
	handler.Setup(deps)

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-osSignal
		logs.Logger.Info().Msg("shutting down")
		cancel()
		wg.Wait()
		os.Exit(0)
	}()
	logs.Logger.Info().Str("port", httpPort).Strs("order", a.orchestrator.Order(remover.Plan{})).Msg("cutout hub started")
	return http.Serve(httpPort, metrics.Handler())
}

func removeCommand() *cobra.Command {
	var (
		provider string
		order    string
		format   string
		bgColor  string
	)
	cmd := &cobra.Command{
		Use:   "remove <input> <output>",
		Short: "Remove the background of one image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cliApp()
			if err != nil {
				return err
			}
			img, err := tools.ReadFile(args[0])
			if err != nil {
				return err
			}
			req := cutout.Request{Image: img, Options: cutout.Options{OutputFormat: format, BackgroundColor: bgColor}}
			var res cutout.Result
			if provider != "" {
				res, err = a.orchestrator.RemoveWithService(cmd.Context(), provider, req)
			} else {
				res, err = a.orchestrator.AutoRemove(cmd.Context(), req, remover.Plan{Order: request.SplitOrder(order)})
			}
			if err != nil {
				return err
			}
			if err := tools.WriteFile(args[1], res.Output); err != nil {
				return err
			}
			fmt.Printf("provider=%s cost=%.2f %s\n", res.Provider, res.Cost, res.Note)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "use only this provider")
	cmd.Flags().StringVar(&order, "order", "", "comma separated provider order")
	cmd.Flags().StringVar(&format, "format", "png", "output format, png or jpg")
	cmd.Flags().StringVar(&bgColor, "bg-color", "", "hex background color")
	return cmd
}

func compressCommand() *cobra.Command {
	var (
		target  int64
		quality string
		method  string
	)
	cmd := &cobra.Command{
		Use:   "compress <input> <output>",
		Short: "Compress a pdf towards a target size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cliApp()
			if err != nil {
				return err
			}
			doc, err := tools.ReadFile(args[0])
			if err != nil {
				return err
			}
			outcome, err := a.compressor.Compress(cmd.Context(), doc, pdf.CompressOptions{
				TargetMaxSize: target,
				StartQuality:  pdf.Quality(quality),
				Method:        consts.PDFMethod(method),
			})
			if err != nil {
				return err
			}
			if err := local.SaveFile(bytes.NewReader(outcome.Output), args[1]); err != nil {
				return err
			}
			for _, at := range outcome.Attempts {
				fmt.Printf("%s %-8s %d -> %d (%.1f%%)\n", at.Method, at.Quality, at.InputSize, at.OutputSize, at.ReductionPercent)
			}
			if !outcome.WithinBudget {
				fmt.Println("target size not reached, smallest output kept")
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&target, "target", 0, "target size in bytes, 0 uses the configured budget")
	cmd.Flags().StringVar(&quality, "quality", "", "first quality level to try")
	cmd.Flags().StringVar(&method, "method", "", "ghostscript or qpdf")
	return cmd
}

func cliApp() (*app, error) {
	config.Init(configPath)
	logs.InitConsole(config.GConfig.LogLevel)
	return newApp(config.GConfig)
}

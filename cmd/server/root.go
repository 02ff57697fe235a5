package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	httpadapter "job-copilot/internal/adapter/http"
	"job-copilot/internal/config"
	"job-copilot/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	cfgFile string
	v       = config.New()

	rootCmd = &cobra.Command{
		Use:           "copilot-server",
		Short:         "job-copilot serves the chat, workflow and apply API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.Flags().String("addr", ":3000", "listen address")
	rootCmd.Flags().String("store", "memory", "profile/workflow backend: memory, file, sqlite, postgres")
	rootCmd.Flags().String("catalog", "", "YAML file replacing the built-in job listings")

	mustBind("debug", rootCmd.PersistentFlags().Lookup("debug"))
	mustBind("json", rootCmd.PersistentFlags().Lookup("json"))
	mustBind("http.addr", rootCmd.Flags().Lookup("addr"))
	mustBind("store.backend", rootCmd.Flags().Lookup("store"))
	mustBind("catalog.file", rootCmd.Flags().Lookup("catalog"))
}

func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		log.Fatalf("binding flag %s: %v", key, err)
	}
}

func serve(ctx context.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	logger, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	app := httpadapter.NewApp(a.handler, cfg.HTTP.BodyLimit)

	logger.Info("starting job-copilot",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("store", cfg.Store.Backend),
		zap.Int("workers", cfg.Workflow.Workers),
		zap.Bool("eager_preview", cfg.Workflow.EagerPreview),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.processor.Run(gctx)
	})
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

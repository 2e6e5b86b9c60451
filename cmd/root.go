package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartpark/app"
	"github.com/kilianp07/smartpark/config"
	"github.com/kilianp07/smartpark/core/monitoring"
	"github.com/kilianp07/smartpark/core/pricing"
	"github.com/kilianp07/smartpark/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "smartpark",
	Short:        "Demand-responsive parking pricing service",
	SilenceUsage: true,
	RunE:         run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pricing API, metrics and signage updates",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := app.Setup(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// pricingService builds a pricing service without servers or sinks, for the
// one-shot commands.
func pricingService() (*config.Config, *pricing.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewPricingService(cfg, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func run(cmd *cobra.Command, args []string) error {
	defer monitoring.Recover()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

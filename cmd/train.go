package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartpark/app"
	"github.com/kilianp07/smartpark/core/prediction"
	"github.com/kilianp07/smartpark/infra/logger"
	"github.com/kilianp07/smartpark/infra/store"
	"github.com/kilianp07/smartpark/pkg/export"
)

var (
	trainCSV     string
	trainHistory string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the seasonal occupancy model and store it",
	Long: "Fits the weekly occupancy profile on a ds,y history file, or on synthetic " +
		"history generated from the training section of the configuration.",
	RunE: train,
}

func init() {
	trainCmd.Flags().StringVar(&trainCSV, "csv", "", "history file with ds,y columns")
	trainCmd.Flags().StringVar(&trainHistory, "export-history", "", "write the training history to this CSV file")
	rootCmd.AddCommand(trainCmd)
}

func train(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("train")
	loc, err := cfg.Pricing.Location()
	if err != nil {
		return err
	}
	now := time.Now()

	var (
		obs    []prediction.Observation
		params map[string]any
	)
	if trainCSV != "" {
		f, err := os.Open(trainCSV)
		if err != nil {
			return err
		}
		obs, err = export.ReadObservationsCSV(f, loc)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", trainCSV, err)
		}
		params = map[string]any{"source": trainCSV}
	} else {
		gen := cfg.Training.Generator()
		obs = prediction.NewGenerator(gen).Generate(prediction.StartOfWeek(now.In(loc)))
		params = gen.Params()
	}
	if trainHistory != "" {
		if err := writeFile(trainHistory, func(f *os.File) error { return export.WriteObservationsCSV(f, obs) }); err != nil {
			return err
		}
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	m, err := app.Train(cmd.Context(), st, obs, loc, params, now)
	if err != nil {
		return err
	}
	log.Infof("model %s fitted on %d observations and saved to %s", m.ID, m.Observations, cfg.Store.Path)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), m.ID)
	return err
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

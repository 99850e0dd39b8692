package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/daniacca/pokelab/internal/catalog"
)

// app holds state shared by every subcommand.
type app struct {
	datasetPath string
	verbose     bool
	asJSON      bool

	logger  *zap.SugaredLogger
	dataset *catalog.Dataset
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pokelab",
		Short: "Evaluate evolution rules, type matchups and battles",
		Long: `pokelab evaluates Pokémon evolution requirements and type matchups
against a dataset. The bundled dataset is used unless --dataset points at a
JSON or YAML file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger.Sugar()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.datasetPath, "dataset", "d", "", "dataset file (JSON or YAML); default is the bundled dataset")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		a.evolveCmd(),
		a.optionsCmd(),
		a.progressCmd(),
		a.lineCmd(),
		a.stoneCmd(),
		a.classifyCmd(),
		a.battleCmd(),
		a.validateCmd(),
	)
	return root
}

// loadDataset returns the dataset selected by --dataset, loading it once.
func (a *app) loadDataset() (*catalog.Dataset, error) {
	if a.dataset != nil {
		return a.dataset, nil
	}
	if a.datasetPath == "" {
		a.dataset = catalog.Default()
		return a.dataset, nil
	}
	ds, err := catalog.LoadDatasetFile(a.datasetPath, a.logger)
	if err != nil {
		return nil, err
	}
	a.logger.Debugf("dataset loaded: path=%s name=%s chains=%d", a.datasetPath, ds.Name, ds.Dex.Len())
	a.dataset = ds
	return ds, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

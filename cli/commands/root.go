package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cedricrupb/dataviewer/cli/output"
	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/provider"
	"github.com/cedricrupb/dataviewer/core/provider/registry"
	"github.com/cedricrupb/dataviewer/core/viewer"
)

// CLI holds the application state
type CLI struct {
	Config   *config.Config
	Provider provider.Provider
	Output   *output.Formatter
	TestMode bool
}

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

// View flags
var (
	splitFlag  string
	promptFlag string
	forceFlag  bool
)

// NewRootCommand creates the root command
func NewRootCommand(ctx context.Context, testMode bool) *cobra.Command {
	cli := &CLI{
		TestMode: testMode,
	}

	rootCmd := &cobra.Command{
		Use:   "dataviewer <dataset>",
		Short: "Generate and run a Streamlit viewer for a Hugging Face dataset",
		Long: color.HiCyanString("dataviewer") + ` creates an AI-generated Streamlit app to browse any
Hugging Face dataset, with previous/next/random/index navigation.

The generated script is cached per (dataset, split, prompt); pass --force
to regenerate.

Examples:
  dataviewer mnist
  dataviewer mnist --split test
  dataviewer princeton-nlp/SWE-bench --split train --prompt "show the patch as a diff"
  dataviewer cache list`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize configuration
			if err := cli.initConfig(); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			// Initialize output formatter
			cli.Output = output.NewFormatter(!noColor, verbose)

			// Only the commands that talk to a provider need one
			needsProvider := false
			switch cmd.Name() {
			case "dataviewer":
				needsProvider = len(args) > 0
			case "test":
				needsProvider = true
			}

			if needsProvider && !cli.TestMode {
				if err := cli.initProvider(); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runViewer(ctx, cli, args[0])
			}
			return cmd.Help()
		},
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dataviewer/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Viewer flags
	rootCmd.Flags().StringVarP(&splitFlag, "split", "s", "", "dataset split to visualize (default: train)")
	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "additional requirements for the visualization")
	rootCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "force regeneration of the viewer")

	// Add subcommands
	rootCmd.AddCommand(
		NewCacheCommand(cli),
		NewProviderCommand(ctx, cli),
		NewVersionCommand(),
	)

	return rootCmd
}

// initConfig initializes the configuration
func (cli *CLI) initConfig() error {
	if cli.TestMode {
		cli.Config = config.DefaultConfig()
		return nil
	}

	configDir := config.DefaultConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Set config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("DATAVIEWER")
	viper.AutomaticEnv()

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; fall back to defaults
			cli.Config = config.DefaultConfig()
			if saveErr := config.SaveToFile(cli.Config, filepath.Join(configDir, "config.yaml")); saveErr != nil && verbose {
				color.Yellow("Warning: could not write default config: %v", saveErr)
			}
			return nil
		}
		return err
	}

	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return err
	}
	cli.Config = cfg

	return nil
}

// initProvider resolves the provider once at startup. The configured
// active provider wins when its key resolves; otherwise selection falls
// back to the environment (ANTHROPIC_API_KEY before OPENAI_API_KEY).
func (cli *CLI) initProvider() error {
	if cli.Provider != nil {
		return nil
	}

	manager := registry.NewManager(cli.Config)
	if p, err := manager.GetActiveProvider(); err == nil && p.Available() {
		cli.Provider = p
		return nil
	}

	p, err := registry.FromEnvironment()
	if err != nil {
		return err
	}
	cli.Provider = p
	return nil
}

// runViewer drives the full pipeline for one dataset
func runViewer(ctx context.Context, cli *CLI, datasetName string) error {
	if cli.Provider == nil {
		return fmt.Errorf("provider not initialized")
	}

	cli.Output.Info("Setting up viewer for " + datasetName)
	cli.Output.Debug("Provider: " + cli.Provider.Name())

	v := viewer.New(cli.Provider, cli.Config)
	if verbose {
		v.SetProgressCallback(cli.Output.Stage)
	}

	cli.Output.Info("Loading dataset...")
	if err := v.LoadDataset(ctx, datasetName); err != nil {
		cli.Output.ShowStageError(err)
		return err
	}

	opts := viewer.Options{
		Split:       splitFlag,
		ExtraPrompt: promptFlag,
		Force:       forceFlag,
	}

	var info *viewer.Info
	err := output.RunWithSpinner("Waiting for AI to generate visualization code", func() error {
		var genErr error
		info, genErr = v.GenerateViewer(ctx, opts)
		return genErr
	})
	if err != nil {
		cli.Output.ShowStageError(err)
		return err
	}

	cli.Output.ShowViewerInfo(info)
	if info.Cached && !forceFlag {
		cli.Output.Debug("Use --force to regenerate the viewer")
	}

	cli.Output.Success("Launching Streamlit...")
	if err := v.LaunchViewer(ctx, info); err != nil {
		cli.Output.ShowStageError(err)
		return err
	}

	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simonhull/promptmeta"
	"github.com/simonhull/promptmeta/internal/config"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "promptdump [flags] <image>...",
		Short: "Print the prompts and settings stored in AI generated images",
		Long: `promptdump reads PNG, JPEG, WebP and .txt files written by image
generation tools and prints the prompts, model and sampler settings they
carry.

Recognized tools: A1111 webUI, ComfyUI, StableSwarmUI, Fooocus and NovelAI.

Settings are read from promptdump.yaml in the current directory or in
$HOME/.config/promptdump, and from PROMPTDUMP_* environment variables.`,
		Args:              cobra.MinimumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runParse,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("output", "o", config.OutputText, "Output format: text, json or yaml")
	flags.BoolP("verbose", "v", false, "Enable debug logging of the classifier cascade")
	flags.Bool("no-color", false, "Disable colored output")
	flags.IntP("concurrency", "j", 0, "Number of files read at once (default: number of CPUs)")

	rootCmd.Flags().Bool("raw", false, "Include the raw metadata sections")
	rootCmd.Flags().Int("text-depth", 0, "Hops followed while resolving graph prompt text")
	rootCmd.Flags().Int("chain-depth", 0, "Hops followed along a model loader chain")

	// Flags left unset fall back to the config file, the environment and
	// the defaults, in that order.
	_ = a.v.BindPFlag("output", flags.Lookup("output"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("no_color", flags.Lookup("no-color"))
	_ = a.v.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = a.v.BindPFlag("raw", rootCmd.Flags().Lookup("raw"))
	_ = a.v.BindPFlag("limits.text_depth", rootCmd.Flags().Lookup("text-depth"))
	_ = a.v.BindPFlag("limits.chain_depth", rootCmd.Flags().Lookup("chain-depth"))

	rootCmd.AddCommand(newBlobsCommand(a))
	rootCmd.AddCommand(newVersionCommand(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.NoColor {
		color.NoColor = true
	}

	logCfg := zap.NewProductionConfig()
	if cfg.Verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if file := config.UsedFile(a.v); file != "" {
		logger.Debug("loaded config", zap.String("file", file))
	}
	return nil
}

// openOptions returns the library options derived from the configuration.
func (a *app) openOptions() ([]promptmeta.Option, error) {
	opts := []promptmeta.Option{
		promptmeta.WithLogger(a.logger),
		promptmeta.WithConcurrency(a.cfg.Concurrency),
		promptmeta.WithLimits(a.cfg.Limits),
	}
	if a.cfg.CacheSize > 0 {
		cache, err := promptmeta.NewCache(a.cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		opts = append(opts, promptmeta.WithCache(cache))
	}
	return opts, nil
}

func (a *app) open(ctx context.Context, paths []string) ([]*promptmeta.Image, error) {
	opts, err := a.openOptions()
	if err != nil {
		return nil, err
	}
	return promptmeta.OpenMany(ctx, paths, opts...)
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	images, err := a.open(cmd.Context(), args)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), a.cfg.Output, images, a.cfg.Raw)
}

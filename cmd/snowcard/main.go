// Command snowcard shows a greeting card under falling snow and exports it
// as a PNG or WebM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/snowfall/internal/config"
	"github.com/phanxgames/snowfall/internal/logging"
	"github.com/phanxgames/snowfall/transcode"
)

var version = "dev"

// flags holds command-line overrides for the config file.
type flags struct {
	configFile    string
	logLevel      string
	card          string
	strategy      string
	reference     string
	fog           bool
	speed         float64
	reducedMotion bool
	hud           bool
	timing        bool
	script        string
	outDir        string
}

// apply copies every flag the user set onto cfg.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("card") {
		cfg.Card.Path = f.card
	}
	if fs.Changed("strategy") {
		cfg.Snow.Strategy = f.strategy
	}
	if fs.Changed("reference") {
		cfg.Snow.Reference = f.reference
	}
	if fs.Changed("fog") {
		cfg.Snow.Fog = f.fog
		cfg.Export.Fog = f.fog
	}
	if fs.Changed("speed") {
		cfg.Snow.Speed = f.speed
	}
	if fs.Changed("reduced-motion") {
		cfg.Snow.ReducedMotion = f.reducedMotion
	}
	if fs.Changed("hud") {
		cfg.Debug.HUD = f.hud
	}
	if fs.Changed("timing") {
		cfg.Debug.Timing = f.timing
	}
	if fs.Changed("script") {
		cfg.Debug.Script = f.script
	}
	if fs.Changed("out") {
		cfg.Export.Dir = f.outDir
	}
	return cfg.Validate()
}

// load reads the config file, applies flags and configures logging.
func (f *flags) load(cmd *cobra.Command) (*config.Config, func(), error) {
	cfg, err := config.LoadOptional(f.configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return nil, nil, err
	}
	closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closeLog, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var f flags

	var rootCmd = &cobra.Command{
		Use:   "snowcard",
		Short: "Greeting card with falling snow",
		Long:  "Shows a greeting card under falling snow. Press P to save a PNG and V to record a short WebM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := f.load(cmd)
			if err != nil {
				return err
			}
			defer closeLog()
			return runWindow(ctx, cfg)
		},
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", config.DefaultFile, "path to config file")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level: none, trace, debug, info, warn, error, fatal")
	pf.StringVar(&f.card, "card", "", "card artwork (png, jpeg, gif, bmp, webp); empty uses a placeholder")
	pf.BoolVar(&f.fog, "fog", false, "draw the fog band")
	pf.StringVarP(&f.outDir, "out", "o", ".", "directory exports are written to")

	fl := rootCmd.Flags()
	fl.StringVar(&f.strategy, "strategy", "single", "render strategy: single or dual")
	fl.StringVar(&f.reference, "reference", "viewport", "snow sizing reference: viewport or card")
	fl.Float64Var(&f.speed, "speed", 1, "snow speed multiplier")
	fl.BoolVar(&f.reducedMotion, "reduced-motion", false, "disable the live snow")
	fl.BoolVar(&f.hud, "hud", false, "show the overlay")
	fl.BoolVar(&f.timing, "timing", false, "log per-frame timings at debug level")
	fl.StringVar(&f.script, "script", "", "JSON test script to run")

	var exportCmd = &cobra.Command{
		Use:       "export png|video",
		Short:     "Export the card without opening a window",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"png", "video"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := f.load(cmd)
			if err != nil {
				return err
			}
			defer closeLog()
			return runExport(ctx, cfg, args[0])
		},
		SilenceUsage: true,
	}

	var transcodeCmd = &cobra.Command{
		Use:   "transcode INPUT.webm OUTPUT.mp4",
		Short: "Re-encode an exported video as MP4 with ffmpeg",
		// Argument checks belong to transcode.Main so the exit status
		// matches the standalone tool.
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(transcode.Main(ctx, args, transcode.ExecRunner{}, logging.For("transcode"), cmd.ErrOrStderr()))
		},
	}

	var checkConfigCmd = &cobra.Command{
		Use:   "checkconfig",
		Short: "Check the configuration file and print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := f.load(cmd)
			if err != nil {
				return err
			}
			defer closeLog()
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
		SilenceUsage: true,
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Snowcard version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("snowcard %s\n", version)
		},
	}

	rootCmd.AddCommand(exportCmd, transcodeCmd, checkConfigCmd, versionCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("snowcard")
		os.Exit(1)
	}
}

package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"synthmind/internal/config"
)

// rootOptions holds flag values shared by every subcommand. Flags override
// SYNTHMIND_* variables, which override the config file.
type rootOptions struct {
	configPath string
	flags      config.Config
	cfg        config.Config
	log        zerolog.Logger
	stderr     io.Writer
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{stderr: os.Stderr}
	root := &cobra.Command{
		Use:           "synthmind",
		Short:         "Local chat, image generation and image description over cached models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&o.flags.ModelsDir, "models-dir", "", "Model store root (default ~/.synthmind/models)")
	pf.StringVar(&o.flags.PersonasDir, "personas-dir", "", "Persona directory (default ~/.synthmind/personas)")
	pf.BoolVar(&o.flags.Offline, "offline", false, "Never download; serve only completed local models")
	pf.StringVar(&o.flags.HubEndpoint, "hub-endpoint", "", "Model hub base URL (default HF_ENDPOINT or https://huggingface.co)")
	pf.StringVar(&o.flags.HubCacheDir, "hub-cache-dir", "", "Download through this Hugging Face cache (e.g. ~/.cache/huggingface/hub) and link files into the store")
	pf.StringVar(&o.flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := o.resolve(cmd)
		if err != nil {
			return err
		}
		o.cfg = cfg
		o.log = newLogger(o.stderr, cfg.LogLevel)
		return nil
	}

	root.AddCommand(newServeCmd(o), newPullCmd(o), newSetupCmd(o))
	return root
}

// resolve layers file, environment and changed flags, then applies defaults.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	fl := cmd.Flags()
	set := func(name string, apply func()) {
		if f := fl.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	f := o.flags
	set("models-dir", func() { cfg.ModelsDir = f.ModelsDir })
	set("personas-dir", func() { cfg.PersonasDir = f.PersonasDir })
	set("offline", func() { cfg.Offline = f.Offline })
	set("hub-endpoint", func() { cfg.HubEndpoint = f.HubEndpoint })
	set("hub-cache-dir", func() { cfg.HubCacheDir = f.HubCacheDir })
	set("log-level", func() { cfg.LogLevel = f.LogLevel })
	set("addr", func() { cfg.Addr = f.Addr })
	set("chat-runtime", func() { cfg.ChatRuntime = f.ChatRuntime })
	set("runtime-url", func() { cfg.RuntimeURL = f.RuntimeURL })
	set("vision-url", func() { cfg.VisionURL = f.VisionURL })
	set("chat-model", func() { cfg.ChatModel = f.ChatModel })
	set("vision-model", func() { cfg.VisionModel = f.VisionModel })
	set("image-model", func() { cfg.ImageModel = f.ImageModel })
	set("max-wait", func() { cfg.MaxWaitSeconds = f.MaxWaitSeconds })
	set("cors-origins", func() { cfg.CORSOrigins = f.CORSOrigins })
	set("progress", func() { cfg.Progress = f.Progress })
	set("parallel", func() { cfg.HubParallelism = f.HubParallelism })

	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

// newLogger writes human readable lines to terminals and JSON otherwise.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"synthmind/internal/httpapi"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var (
		requestLog      string
		generateTimeout time.Duration
		maxBodyBytes    int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := buildComponents(ctx, o.cfg, o.log, nil)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.manager.Close(); err != nil {
					o.log.Warn().Err(err).Msg("close instances")
				}
			}()
			if rep := c.manager.SanityCheck(); !rep.OK {
				o.log.Warn().Str("problems", rep.Error).Msg("some capabilities are unavailable")
			}

			httpapi.SetLogger(o.log)
			httpapi.SetRequestLogLevel(requestLog)
			httpapi.SetBaseContext(ctx)
			httpapi.SetGenerateTimeout(generateTimeout)
			httpapi.SetMaxBodyBytes(maxBodyBytes)
			httpapi.SetCORSOptions(len(o.cfg.CORSOrigins) > 0, o.cfg.CORSOrigins, nil, nil)

			srv := &http.Server{
				Addr:              o.cfg.Addr,
				Handler:           httpapi.NewMux(c.service),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				o.log.Info().Str("addr", o.cfg.Addr).Str("models_dir", o.cfg.ModelsDir).Bool("offline", o.cfg.Offline).Msg("synthmind listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			o.log.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				o.log.Warn().Err(err).Msg("graceful shutdown")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.flags.Addr, "addr", "", "HTTP listen address (default :8080)")
	f.StringVar(&o.flags.ChatRuntime, "chat-runtime", "", "Chat runtime: openai|llama")
	f.StringVar(&o.flags.RuntimeURL, "runtime-url", "", "OpenAI compatible runtime base URL, e.g. http://localhost:8000/v1")
	f.StringVar(&o.flags.VisionURL, "vision-url", "", "Vision classify runtime base URL")
	f.StringVar(&o.flags.ChatModel, "chat-model", "", "Default chat model id")
	f.StringVar(&o.flags.VisionModel, "vision-model", "", "Default vision model id")
	f.StringVar(&o.flags.ImageModel, "image-model", "", "Default image model id")
	f.IntVar(&o.flags.MaxWaitSeconds, "max-wait", 0, "Seconds a request may wait for a busy model (default 30)")
	f.StringSliceVar(&o.flags.CORSOrigins, "cors-origins", nil, "Allowed CORS origins; CORS is off when empty")
	f.StringVar(&requestLog, "request-log", "info", "Per-request log level: off|error|info|debug")
	f.DurationVar(&generateTimeout, "generate-timeout", 0, "Timeout for one generation request; a first-use download keeps running for later requests (0 disables)")
	f.Int64Var(&maxBodyBytes, "max-body-bytes", 1<<20, "Maximum JSON request body size")
	return cmd
}

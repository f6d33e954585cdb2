package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/capability"
	"synthmind/internal/config"
	"synthmind/internal/httpapi"
	"synthmind/internal/hub"
	"synthmind/internal/manager"
)

type components struct {
	resolver *acquire.Resolver
	manager  *manager.Manager
	service  *httpapi.App
}

// newResolver returns a resolver backed by the hub, or an offline one. With
// hub_cache_dir set, downloads go through the shared cache. Downloads stop
// when ctx is done.
func newResolver(ctx context.Context, cfg config.Config, log zerolog.Logger, progress io.Writer) (*acquire.Resolver, error) {
	opts := []acquire.Option{acquire.WithLogger(log), acquire.WithBaseContext(ctx)}
	if !cfg.Offline {
		hopts := []hub.Option{
			hub.WithEndpoint(cfg.HubEndpoint),
			hub.WithParallelism(cfg.HubParallelism),
			hub.WithLogger(log),
		}
		if cfg.HubToken != "" {
			hopts = append(hopts, hub.WithToken(cfg.HubToken))
		}
		if progress != nil {
			hopts = append(hopts, hub.WithProgress(progress))
		}
		var f acquire.Fetcher = hub.NewClient(hopts...)
		if cfg.HubCacheDir != "" {
			sf, err := hub.NewSnapshotFetcher(cfg.HubCacheDir, hopts...)
			if err != nil {
				return nil, err
			}
			log.Info().Str("cache", sf.CacheDir()).Msg("downloading through hub cache")
			f = sf
		}
		opts = append(opts, acquire.WithFetcher(f))
	}
	return acquire.NewResolver(cfg.ModelsDir, opts...), nil
}

// chatBinding picks the chat runtime named by chat_runtime.
func chatBinding(cfg config.Config, oa backend.OpenAIOptions) backend.Binding[backend.LanguageModel] {
	if cfg.ChatRuntime == "llama" {
		return backend.NewLlamaFactory(backend.LlamaOptions{ContextSize: cfg.LlamaCtx, Threads: cfg.LlamaThreads})
	}
	return backend.NewOpenAIChatFactory(oa)
}

func buildComponents(ctx context.Context, cfg config.Config, log zerolog.Logger, progress io.Writer) (*components, error) {
	res, err := newResolver(ctx, cfg, log, progress)
	if err != nil {
		return nil, err
	}
	if err := res.Provision(); err != nil {
		return nil, err
	}
	oa := backend.OpenAIOptions{BaseURL: cfg.RuntimeURL, APIKey: cfg.RuntimeAPIKey}
	vo := backend.VisionOptions{URL: cfg.VisionURL}

	m := manager.NewWithConfig(manager.ManagerConfig{
		Resolver:  res,
		MaxWait:   cfg.MaxWait(),
		Publisher: manager.NewLogPublisher(log),
		Logger:    &log,
		Runtimes:  backend.RuntimeChecks(cfg.ChatRuntime, oa, vo),
	})

	chat := capability.NewChat(m, chatBinding(cfg, oa), log)
	images := capability.NewImages(m, backend.NewDiffusionFactory(oa), log)
	vision := capability.NewVision(m, backend.NewVisionFactory(vo), log)
	if cfg.ChatModel != "" {
		chat.Default = cfg.ChatModel
	}
	if cfg.ImageModel != "" {
		images.Default = cfg.ImageModel
	}
	if cfg.VisionModel != "" {
		vision.Default = cfg.VisionModel
	}

	svc := httpapi.NewService(httpapi.ServiceConfig{
		Manager:     m,
		Resolver:    res,
		Chat:        chat,
		Images:      images,
		Vision:      vision,
		PersonasDir: cfg.PersonasDir,
	})
	return &components{resolver: res, manager: m, service: svc}, nil
}

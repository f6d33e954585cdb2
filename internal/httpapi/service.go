package httpapi

import (
	"context"
	"image"
	"strings"

	"synthmind/internal/acquire"
	"synthmind/internal/capability"
	"synthmind/internal/manager"
	"synthmind/internal/persona"
	"synthmind/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)
	CreateImage(ctx context.Context, req types.ImageRequest) (image.Image, error)
	Describe(ctx context.Context, img image.Image, model string) (types.VisionResponse, error)
	Pull(ctx context.Context, req types.PullRequest) (types.PullResponse, error)
	Models() types.ModelsResponse
	Status() types.StatusResponse
	Sanity() manager.SanityReport
	Ready() bool
}

// ServiceConfig names the collaborators of App.
type ServiceConfig struct {
	Manager     *manager.Manager
	Resolver    *acquire.Resolver
	Chat        *capability.Chat
	Images      *capability.Images
	Vision      *capability.Vision
	PersonasDir string
}

// App is the Service backed by the capability adapters.
type App struct {
	m           *manager.Manager
	resolver    *acquire.Resolver
	chat        *capability.Chat
	images      *capability.Images
	vision      *capability.Vision
	personasDir string
}

// NewService wires the adapters into a Service.
func NewService(cfg ServiceConfig) *App {
	return &App{
		m:           cfg.Manager,
		resolver:    cfg.Resolver,
		chat:        cfg.Chat,
		images:      cfg.Images,
		vision:      cfg.Vision,
		personasDir: cfg.PersonasDir,
	}
}

// Chat renders the named persona, if any, and asks the chat adapter for a reply.
// A stored persona takes precedence over inline persona text.
func (a *App) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	text := req.Persona
	if name := strings.TrimSpace(req.PersonaName); name != "" {
		p, err := persona.Load(a.personasDir, name)
		if err != nil {
			return types.ChatResponse{}, err
		}
		text = persona.Render(p)
	}
	history := make([]capability.Turn, 0, len(req.History))
	for _, h := range req.History {
		history = append(history, capability.Turn{User: h.User, Assistant: h.Assistant})
	}
	reply, err := a.chat.Respond(ctx, capability.ChatInput{
		Text:    req.Message,
		History: history,
		Model:   req.Model,
		Persona: text,
	})
	if err != nil {
		return types.ChatResponse{}, err
	}
	return types.ChatResponse{Reply: reply}, nil
}

func (a *App) CreateImage(ctx context.Context, req types.ImageRequest) (image.Image, error) {
	return a.images.CreateImage(ctx, req.Prompt, req.Size, req.Model)
}

func (a *App) Describe(ctx context.Context, img image.Image, model string) (types.VisionResponse, error) {
	desc, err := a.vision.Describe(ctx, img, model)
	if err != nil {
		return types.VisionResponse{}, err
	}
	return types.VisionResponse{Description: desc}, nil
}

// Pull downloads a model without constructing it.
func (a *App) Pull(ctx context.Context, req types.PullRequest) (types.PullResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return types.PullResponse{}, badRequest("model is required")
	}
	c, err := acquire.ParseCategory(req.Category)
	if err != nil {
		return types.PullResponse{}, badRequest(err.Error())
	}
	dir, err := a.m.Acquire(ctx, c, req.Model)
	if err != nil {
		return types.PullResponse{}, err
	}
	return types.PullResponse{Model: req.Model, Category: string(c), Path: dir}, nil
}

// Models lists the default model of each category and what is cached.
func (a *App) Models() types.ModelsResponse {
	defaults := []types.ModelRef{
		a.ref(acquire.ChatModel, a.chat.Default),
		a.ref(acquire.VisionModel, a.vision.Default),
		a.ref(acquire.ImageGenerator, a.images.Default),
	}
	cached := a.m.Cached()
	if cached == nil {
		cached = []types.ModelRef{}
	}
	return types.ModelsResponse{Defaults: defaults, Cached: cached}
}

func (a *App) ref(c acquire.Category, id string) types.ModelRef {
	r := types.ModelRef{ID: id, Category: string(c)}
	if a.resolver == nil {
		return r
	}
	if dir, err := a.resolver.Dir(id, c); err == nil {
		r.Path = dir
		r.Local = a.resolver.Complete(id, c)
	}
	return r
}

func (a *App) Status() types.StatusResponse { return a.m.Status() }

func (a *App) Sanity() manager.SanityReport { return a.m.SanityCheck() }

func (a *App) Ready() bool { return a.m.Ready() }

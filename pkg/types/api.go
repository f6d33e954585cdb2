package types

// ChatTurn is one prior exchange of a conversation.
type ChatTurn struct {
	// What the user said.
	// example: Hi there
	User string `json:"user" example:"Hi there"`
	// What the assistant answered.
	// example: Hello! How can I help?
	Assistant string `json:"assistant" example:"Hello! How can I help?"`
}

// ChatRequest is the payload of POST /chat.
type ChatRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: distilgpt2
	Model string `json:"model,omitempty" example:"distilgpt2"`
	// Required user message.
	// example: Tell me a joke
	Message string `json:"message" example:"Tell me a joke"`
	// Prior turns, oldest first. Only the last two are used.
	History []ChatTurn `json:"history,omitempty"`
	// Inline persona text placed before the conversation.
	// example: You are a cheerful pirate.
	Persona string `json:"persona,omitempty" example:"You are a cheerful pirate."`
	// Name of a stored persona to render instead of inline text.
	// example: pirate
	PersonaName string `json:"persona_name,omitempty" example:"pirate"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	// Generated reply, trimmed.
	// example: Why did the chicken cross the road?
	Reply string `json:"reply" example:"Why did the chicken cross the road?"`
}

// ImageRequest is the payload of POST /images. The response body is image/png.
type ImageRequest struct {
	// Optional diffusion pipeline identifier.
	// example: runwayml/stable-diffusion-v1-5
	Model string `json:"model,omitempty" example:"runwayml/stable-diffusion-v1-5"`
	// Required text prompt.
	// example: a lighthouse at dusk
	Prompt string `json:"prompt" example:"a lighthouse at dusk"`
	// Square edge length in pixels; 0 uses the default of 512.
	// example: 512
	Size int `json:"size,omitempty" example:"512"`
}

// VisionResponse is returned by POST /vision.
type VisionResponse struct {
	// example: Detected: tabby cat
	Description string `json:"description" example:"Detected: tabby cat"`
}

// PullRequest is the payload of POST /models/pull.
type PullRequest struct {
	// example: google/vit-base-patch16-224
	Model string `json:"model" example:"google/vit-base-patch16-224"`
	// One of chat, vision, image.
	// example: vision
	Category string `json:"category" example:"vision"`
}

// PullResponse reports where a pulled model lives.
type PullResponse struct {
	Model    string `json:"model" example:"google/vit-base-patch16-224"`
	Category string `json:"category" example:"vision"`
	// example: /home/user/.synthmind/models/vision/google--vit-base-patch16-224
	Path string `json:"path" example:"/home/user/.synthmind/models/vision/google--vit-base-patch16-224"`
}

// ModelsResponse wraps the defaults and cached instances returned by GET /models.
type ModelsResponse struct {
	// Default model per category.
	Defaults []ModelRef `json:"defaults"`
	// Instances constructed since start.
	Cached []ModelRef `json:"cached"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Machine readable failure class.
	// example: download_unavailable
	Kind string `json:"kind,omitempty" example:"download_unavailable"`
}

// InstanceStatus summarizes a cached instance for /status.
type InstanceStatus struct {
	// example: chat
	Category string `json:"category" example:"chat"`
	// example: distilgpt2
	ModelID string `json:"model_id" example:"distilgpt2"`
	// Local artifact directory the instance was built from.
	Dir string `json:"dir"`
	// example: 1700000000
	CreatedAt int64 `json:"created_unix" example:"1700000000"`
	// Last time this instance was handed out (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Number of cache hits plus the constructing call.
	// example: 3
	Uses int64 `json:"uses" example:"3"`
	// Requests waiting for the instance.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Requests currently running on the instance (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// RuntimeCheck reports whether one runtime dependency is usable.
type RuntimeCheck struct {
	// example: chat
	Name string `json:"name" example:"chat"`
	OK   bool   `json:"ok"`
	// example: llama support not built
	Detail string `json:"detail,omitempty" example:"llama support not built"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Cached instances across categories.
	Instances []InstanceStatus `json:"instances"`
	// True when no remote fetcher is configured.
	Offline bool `json:"offline"`
	// Runtime availability.
	Runtimes []RuntimeCheck `json:"runtimes,omitempty"`
	// Last construction or acquisition error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of successful constructions.
	// example: 3
	LoadsTotal uint64 `json:"loads_total" example:"3"`
}

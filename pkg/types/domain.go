package types

// ModelRef names a model within a storage category.
type ModelRef struct {
	// Registry identifier.
	// example: distilgpt2
	ID string `json:"id" example:"distilgpt2"`
	// One of chat, vision, image.
	// example: chat
	Category string `json:"category" example:"chat"`
	// Local artifact directory, when known.
	Path string `json:"path,omitempty"`
	// Whether a completed download exists.
	Local bool `json:"local"`
}

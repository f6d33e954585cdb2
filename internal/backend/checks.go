package backend

import "synthmind/pkg/types"

// RuntimeChecks reports which capabilities can be served with the given
// runtime selection.
func RuntimeChecks(chatRuntime string, o OpenAIOptions, v VisionOptions) []types.RuntimeCheck {
	chat := types.RuntimeCheck{Name: "chat", OK: true}
	switch chatRuntime {
	case "llama":
		if !LlamaBuilt {
			chat.OK, chat.Detail = false, "llama support not built"
		}
	default:
		if o.BaseURL == "" {
			chat.OK, chat.Detail = false, "runtime_url not set"
		}
	}
	img := types.RuntimeCheck{Name: "image", OK: o.BaseURL != ""}
	if !img.OK {
		img.Detail = "runtime_url not set"
	}
	vision := types.RuntimeCheck{Name: "vision", OK: v.URL != ""}
	if !vision.OK {
		vision.Detail = "vision_url not set"
	}
	return []types.RuntimeCheck{chat, img, vision}
}

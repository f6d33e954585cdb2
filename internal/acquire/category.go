package acquire

import "fmt"

// Category selects the storage root for downloaded artifacts and, one level
// up, which runtime builds an instance from them.
type Category string

const (
	ChatModel      Category = "chat"
	VisionModel    Category = "vision"
	ImageGenerator Category = "image"
)

// Categories lists every storage category in a stable order.
var Categories = []Category{ChatModel, VisionModel, ImageGenerator}

// dirNames are the on-disk roots under the models directory.
var dirNames = map[Category]string{
	ChatModel:      "llm",
	VisionModel:    "vision",
	ImageGenerator: "sd",
}

// DirName returns the directory name used for c under the models root.
func (c Category) DirName() string { return dirNames[c] }

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := dirNames[c]
	return ok
}

// ParseCategory maps user input (including the directory aliases) to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "chat", "llm":
		return ChatModel, nil
	case "vision":
		return VisionModel, nil
	case "image", "sd", "diffusion":
		return ImageGenerator, nil
	}
	return "", fmt.Errorf("unknown model category %q", s)
}

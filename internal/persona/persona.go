// Package persona reads persona files written by the persona editor. It
// never writes them.
package persona

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxExamples is the number of dialog examples rendered into a prompt.
const MaxExamples = 3

// Persona is the content of <name>.json.
type Persona struct {
	Name           string   `json:"name"`
	Background     string   `json:"background"`
	Character      string   `json:"character"`
	DialogExamples []string `json:"dialog_examples"`
}

var (
	// ErrNotFound is returned by Load for a missing persona.
	ErrNotFound = errors.New("persona not found")
	// ErrInvalidName rejects names that are empty or contain a path separator.
	ErrInvalidName = errors.New("invalid persona name")
)

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return nil
}

// Load reads dir/<name>.json.
func Load(dir, name string) (Persona, error) {
	var p Persona
	if err := validName(name); err != nil {
		return p, err
	}
	b, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return p, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("persona %s: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// List returns the persona names in dir, sorted. A missing dir is empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Render flattens p into the text placed before a chat prompt. Empty
// fields are left out.
func Render(p Persona) string {
	var lines []string
	if s := strings.TrimSpace(p.Name); s != "" {
		lines = append(lines, "You are "+s+".")
	}
	if s := strings.TrimSpace(p.Background); s != "" {
		lines = append(lines, "Background: "+s)
	}
	if s := strings.TrimSpace(p.Character); s != "" {
		lines = append(lines, "Character: "+s)
	}
	var ex []string
	for _, d := range p.DialogExamples {
		if s := strings.TrimSpace(d); s != "" {
			ex = append(ex, s)
		}
		if len(ex) == MaxExamples {
			break
		}
	}
	if len(ex) > 0 {
		lines = append(lines, "Example dialog:")
		lines = append(lines, ex...)
	}
	return strings.Join(lines, "\n")
}

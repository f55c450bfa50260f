package simulator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
)

// History is the list of saved simulations. With a Path it is persisted as
// YAML after every change; without one it lives in memory only.
type History struct {
	Path string

	mu    sync.Mutex
	items []Result
}

// OpenHistory loads path if it exists.
func OpenHistory(path string) (*History, error) {
	h := &History{Path: path}
	if path == "" {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if err := yaml.Unmarshal(data, &h.items); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return h, nil
}

// Save stores r under a fresh id and returns the stored copy.
func (h *History) Save(r Result) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r.ID = uuid.NewString()
	h.items = append(h.items, r)
	if err := h.flush(); err != nil {
		h.items = h.items[:len(h.items)-1]
		return Result{}, err
	}
	logf(r.ModelName, "saved simulation %s", r.ID)
	return r, nil
}

// List returns the saved simulations, newest first.
func (h *History) List() []Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := slices.Clone(h.items)
	slices.Reverse(out)
	return out
}

// Delete removes a saved simulation. An id prefix is accepted when it is
// unambiguous.
func (h *History) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx := -1
	for i, r := range h.items {
		if r.ID == id {
			idx = i
			break
		}
		if len(id) >= 4 && len(r.ID) > len(id) && r.ID[:len(id)] == id {
			if idx >= 0 {
				return apperr.Userf("simulation id %q is ambiguous", id)
			}
			idx = i
		}
	}
	if idx < 0 {
		return apperr.Userf("simulation %q not found", id)
	}
	removed := h.items[idx]
	h.items = slices.Delete(h.items, idx, idx+1)
	if err := h.flush(); err != nil {
		h.items = slices.Insert(h.items, idx, removed)
		return err
	}
	return nil
}

func (h *History) flush() error {
	if h.Path == "" {
		return nil
	}
	data, err := yaml.Marshal(h.items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(h.Path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

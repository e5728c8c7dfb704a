package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is a preference store persisted as a flat YAML mapping.
type File struct {
	path   string
	logger *zap.Logger
	mem    *Memory
	once   sync.Once
	wmu    sync.Mutex
}

// NewFile creates a store backed by path. The file is read on first access.
func NewFile(path string, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{path: path, logger: logger, mem: NewMemory()}
}

// Bool returns the boolean stored at key.
func (f *File) Bool(key string) bool {
	f.load()
	return f.mem.Bool(key)
}

// SetBool stores a boolean and rewrites the file when the value changed.
func (f *File) SetBool(key string, value bool) {
	f.load()
	if f.mem.has(key) && f.mem.Bool(key) == value {
		return
	}
	f.mem.SetBool(key, value)
	f.flush()
}

// Reload discards cached values and reads the file again.
func (f *File) Reload() error {
	values, err := readFile(f.path)
	if err != nil {
		return err
	}
	f.once.Do(func() {})
	f.mem.replace(values)
	return nil
}

func (f *File) load() {
	f.once.Do(func() {
		values, err := readFile(f.path)
		if err != nil {
			f.logger.Warn("Failed to read preferences, starting empty", zap.String("path", f.path), zap.Error(err))
			return
		}
		f.mem.replace(values)
	})
}

func (f *File) flush() {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	if err := writeFile(f.path, f.mem.snapshot()); err != nil {
		f.logger.Error("Failed to write preferences", zap.String("path", f.path), zap.Error(err))
	}
}

func readFile(path string) (map[string]any, error) {
	values := make(map[string]any)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

func writeFile(path string, values map[string]any) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

package regressor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"IDXForecast/internal/model"
)

// Store reads and writes model artifacts named {symbol}_model.json in Dir.
type Store struct {
	Dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the artifact path for symbol.
func (s *Store) Path(symbol string) string {
	return filepath.Join(s.Dir, symbol+"_model.json")
}

// Load reads the artifact for symbol. A missing file is model.ErrModelNotFound.
func (s *Store) Load(symbol string) (Model, error) {
	a, err := s.LoadArtifact(symbol)
	if err != nil {
		return nil, err
	}
	m, err := a.Build()
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", symbol, err)
	}
	return m, nil
}

// LoadArtifact reads and decodes the raw artifact for symbol.
func (s *Store) LoadArtifact(symbol string) (*Artifact, error) {
	if symbol == "" || filepath.Base(symbol) != symbol {
		return nil, fmt.Errorf("load model %q: %w", symbol, model.ErrModelNotFound)
	}
	data, err := os.ReadFile(s.Path(symbol))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load model %s: %w", symbol, model.ErrModelNotFound)
		}
		return nil, fmt.Errorf("read model %s: %w", symbol, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model %s: %v: %w", symbol, err, model.ErrInvalidModel)
	}
	return &a, nil
}

// Save writes the artifact for symbol through a temp file and rename.
func (s *Store) Save(symbol string, a *Artifact) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model %s: %w", symbol, err)
	}
	tmp, err := os.CreateTemp(s.Dir, symbol+"_model.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write model %s: %w", symbol, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close model %s: %w", symbol, err)
	}
	return os.Rename(tmp.Name(), s.Path(symbol))
}

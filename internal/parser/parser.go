package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/google/uuid"
)

// Loader decodes one analysis file format.
type Loader interface {
	CanLoad(filename string) bool
	Load(content []byte) (*analysis.Result, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no loader accepts the file.
var ErrUnsupported = errors.New("unsupported analysis file format")

// LoadFile reads an analysis result written by the analysis service.
// A missing analysis_id is replaced with a fresh UUID and relative
// visualization paths are resolved against the file's directory.
func LoadFile(path string) (*analysis.Result, error) {
	var loader Loader
	for _, l := range registry {
		if l.CanLoad(path) {
			loader = l
			break
		}
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	res, err := loader.Load(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i, v := range res.Visualizations {
		if v.Path != "" && !filepath.IsAbs(v.Path) {
			res.Visualizations[i].Path = filepath.Join(dir, v.Path)
		}
	}
	return res, nil
}

func init() {
	Register(jsonLoader{})
	Register(yamlLoader{})
}

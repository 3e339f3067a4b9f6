package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// File loads a dataset from a YAML or JSON document on disk. The file is
// re-read on every Load so edits show up without a restart.
type File struct {
	path string
}

// NewFile returns a source reading path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Name implements domain.DataSource.
func (f *File) Name() string { return "file" }

// Load implements domain.DataSource.
func (f *File) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("source: read %s: %w", f.path, err)
	}
	return Decode(raw)
}

// Decode parses a YAML (or JSON) dataset document and validates it.
func Decode(raw []byte) (domain.Dataset, error) {
	var ds domain.Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("source: decode dataset: %w", err)
	}
	if err := ValidateDataset(ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("source: validate dataset: %w", err)
	}
	return ds, nil
}

// Encode renders ds as YAML.
func Encode(ds domain.Dataset) ([]byte, error) {
	out, err := yaml.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("source: encode dataset: %w", err)
	}
	return out, nil
}

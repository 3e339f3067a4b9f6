package s3blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/source"
)

// maxDatasetBytes bounds the size of a dataset object.
var maxDatasetBytes int64 = 16 << 20

// ErrDatasetTooLarge is returned for objects over maxDatasetBytes.
var ErrDatasetTooLarge = errors.New("s3blob: dataset too large")

// ErrDatasetMissing is returned when the configured key does not exist.
var ErrDatasetMissing = errors.New("s3blob: dataset object missing")

// DatasetSource loads a YAML or JSON dataset document from one object key.
type DatasetSource struct {
	reader domain.BlobReader
	key    string
}

// NewDatasetSource reads key through reader on every Load.
func NewDatasetSource(reader domain.BlobReader, key string) *DatasetSource {
	return &DatasetSource{reader: reader, key: key}
}

// Name implements domain.DataSource.
func (s *DatasetSource) Name() string { return "s3" }

// Load implements domain.DataSource. A missing object is a source failure,
// not a lookup miss, so it does not match domain.ErrNotFound.
func (s *DatasetSource) Load(ctx context.Context) (domain.Dataset, error) {
	body, err := s.reader.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetMissing, s.key)
	}
	if err != nil {
		return domain.Dataset{}, err
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxDatasetBytes+1))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("s3blob: read %s: %w", s.key, err)
	}
	if int64(len(raw)) > maxDatasetBytes {
		return domain.Dataset{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrDatasetTooLarge, s.key, maxDatasetBytes)
	}
	ds, err := source.Decode(raw)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("s3blob: %s: %w", s.key, err)
	}
	return ds, nil
}

// Check verifies the dataset object exists without downloading it. Readers
// that cannot answer cheaply pass the check.
func (s *DatasetSource) Check(ctx context.Context) error {
	checker, ok := s.reader.(domain.BlobChecker)
	if !ok {
		return nil
	}
	found, err := checker.Exists(ctx, s.key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrDatasetMissing, s.key)
	}
	return nil
}

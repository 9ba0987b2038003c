package sources

import (
	"context"
	"fmt"
	"os"

	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

// FileSource reads the dataset from a CSV file on local disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) Load(ctx context.Context) ([]temperature.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return rows, nil
}

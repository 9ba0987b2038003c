package temperature

import "context"

// Source abstracts the transport that yields the raw CSV rows of a dataset
// (a local file, an HTTP endpoint). Load returns the complete row set once;
// there is no incremental streaming.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]RawRow, error)
}

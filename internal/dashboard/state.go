package dashboard

import (
	"errors"
	"time"

	"github.com/i474232898/temperature-dashboard/internal/i18n"
	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

var (
	ErrInvalidGranularity = errors.New("granularity must be monthly or daily")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidLanguage    = errors.New("language must be EN or FR")
)

// Status describes whether a dataset is available to derive series from.
type Status string

const (
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusLoadFailed Status = "load_failed"
)

// ViewState is everything that decides which series the line chart shows.
type ViewState struct {
	Granularity temperature.Granularity `json:"granularity"`
	Month       int                     `json:"month"`
	Language    i18n.Language           `json:"language"`
}

// DefaultViewState is the monthly January view in lang.
func DefaultViewState(lang i18n.Language) ViewState {
	if !lang.Valid() {
		lang = i18n.DefaultLanguage
	}
	return ViewState{
		Granularity: temperature.Monthly,
		Month:       1,
		Language:    lang,
	}
}

// Snapshot is the read-only view handed to the rendering layer. Line and Bar
// are nil until a dataset has been loaded.
type Snapshot struct {
	State      ViewState           `json:"state"`
	Status     Status              `json:"status"`
	Line       *temperature.Series `json:"line"`
	Bar        *temperature.Series `json:"bar"`
	Generation uint64              `json:"generation"`
	Records    int                 `json:"records"`
	LoadedAt   *time.Time          `json:"loadedAt,omitempty"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	LastError  string              `json:"lastError,omitempty"`
}

// HasSeries reports whether the snapshot carries derived series.
func (s Snapshot) HasSeries() bool {
	return s.Line != nil && s.Bar != nil
}

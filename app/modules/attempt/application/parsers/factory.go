package parsers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a parser.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrInvalidRow wraps every row-level problem together with its line number.
	ErrInvalidRow = errors.New("invalid row")
	// ErrMissingColumn is returned when the header lacks the time column.
	ErrMissingColumn = errors.New("missing required column")
)

// Row is one parsed attempt.
type Row struct {
	Milliseconds int
	DNF          bool
	Penalty      int
	PerformedAt  time.Time
}

// Parser turns an uploaded file into attempts, newest first. now anchors
// relative dates and rows without a date.
type Parser interface {
	Parse(data []byte, now time.Time) ([]Row, error)
}

// ParserFactory defines the interface for creating parsers
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

// NewFactory creates a new parser factory
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

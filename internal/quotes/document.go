package quotes

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ExportFilename is the conventional name for exported documents.
const ExportFilename = "quotes.json"

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ImportResult reports how many document records were kept and dropped.
type ImportResult struct {
	Imported int `json:"imported"`
	Dropped  int `json:"dropped"`
}

// ExportDocument renders quotes as a pretty-printed JSON array.
func ExportDocument(quotes []Quote) (string, error) {
	out, err := Encode(quotes, FormatJSON)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode renders quotes in the given format.
func Encode(quotes []Quote, format Format) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(quotes)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return out, nil
	case FormatJSON, "":
		out, err := json.MarshalIndent(quotes, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Decode parses a document and returns its valid records in order along with
// the number of dropped elements. It fails with ErrParse when the document is
// malformed and ErrValidation when the top level is not a sequence.
func Decode(raw []byte, format Format) ([]Quote, int, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrParse, err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrParse, err)
		}
	default:
		return nil, 0, fmt.Errorf("unsupported format %q", format)
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, 0, fmt.Errorf("%w: document is not a list of quotes", ErrValidation)
	}
	valid, dropped := validateAll(items)
	return valid, dropped, nil
}

// ExportDocument renders the current collection as pretty-printed JSON.
func (r *Repository) ExportDocument() (string, error) {
	return ExportDocument(r.Quotes())
}

// ImportDocument parses a JSON document and appends its valid records.
func (r *Repository) ImportDocument(raw string) (ImportResult, error) {
	return r.Import([]byte(raw), FormatJSON)
}

// Import parses raw in format and appends the valid records, in document
// order, without deduplicating against existing quotes. A document with no
// valid records returns ErrEmptyImport and leaves the repository unchanged.
func (r *Repository) Import(raw []byte, format Format) (ImportResult, error) {
	valid, dropped, err := Decode(raw, format)
	if err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{Imported: len(valid), Dropped: dropped}
	if len(valid) == 0 {
		return result, ErrEmptyImport
	}
	if err := r.appendValid(valid); err != nil {
		return ImportResult{Dropped: dropped}, err
	}
	r.logger.Info("quotes imported",
		zap.Int("imported", result.Imported),
		zap.Int("dropped", result.Dropped),
		zap.String("format", string(format)))
	return result, nil
}

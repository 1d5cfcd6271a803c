package csv

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"wikitrans/internal/ports"
)

type Exporter struct {
	comma rune
}

func New() *Exporter { return &Exporter{comma: ','} }

// WithSeparator selects "comma", "semicolon" or "tab".
func (e *Exporter) WithSeparator(name string) *Exporter {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "semicolon":
		e.comma = ';'
	case "tab":
		e.comma = '\t'
	default:
		e.comma = ','
	}
	return e
}

func (e *Exporter) Format() string { return "csv" }

func (e *Exporter) Export(items []ports.ExportItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = e.comma
	if err := w.Write([]string{"id", "original", "translation"}); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := w.Write([]string{strconv.FormatInt(it.SentenceID, 10), it.Original, it.Translation}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

package jsonmap

import (
	"encoding/json"
	"strconv"

	"wikitrans/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "json" }

// Export maps each sentence ID to its translation, or to the original when
// the sentence is untranslated.
func (e *Exporter) Export(items []ports.ExportItem) ([]byte, error) {
	out := make(map[string]string, len(items))
	for _, it := range items {
		v := it.Translation
		if v == "" {
			v = it.Original
		}
		out[strconv.FormatInt(it.SentenceID, 10)] = v
	}
	return json.MarshalIndent(out, "", "  ")
}

package jsonmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"wikitrans/internal/ports"
)

// Parser reads a flat JSON object mapping sentence IDs to translations.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "json" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return ports.ParseResult{}, fmt.Errorf("invalid json: %w", err)
	}
	edits := make([]ports.Edit, 0, len(m))
	for k, v := range m {
		// metadata such as $schema
		if len(k) > 0 && k[0] == '$' {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return ports.ParseResult{}, fmt.Errorf("invalid sentence id %q", k)
		}
		edits = append(edits, ports.Edit{SentenceID: id, Text: s})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].SentenceID < edits[j].SentenceID })
	return ports.ParseResult{Edits: edits}, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}

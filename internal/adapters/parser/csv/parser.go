package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wikitrans/internal/ports"
)

// Parser reads edits from a CSV with an id column and a translation column.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "csv" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return ports.ParseResult{}, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idIdx := column(idx, "id", "sentence_id")
	if idIdx < 0 {
		return ports.ParseResult{}, errors.New("csv missing 'id' column")
	}
	textIdx := column(idx, "translation", "translated", "translated_sentence", "text")
	if textIdx < 0 {
		return ports.ParseResult{}, errors.New("csv missing translation column (translation/translated/text)")
	}
	var edits []ports.Edit
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ports.ParseResult{}, err
		}
		if idIdx >= len(rec) || strings.TrimSpace(rec[idIdx]) == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[idIdx]), 10, 64)
		if err != nil {
			return ports.ParseResult{}, fmt.Errorf("line %d: invalid id %q", line, rec[idIdx])
		}
		var text string
		if textIdx < len(rec) {
			text = rec[textIdx]
		}
		edits = append(edits, ports.Edit{SentenceID: id, Text: text})
	}
	return ports.ParseResult{Edits: edits}, nil
}

func column(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}

package exporter

import (
	"errors"

	exreg "wikitrans/internal/adapters/exporter/registry"
	"wikitrans/internal/domain"
	"wikitrans/internal/ports"
)

// Source is the record set being exported; *buffer.Buffer satisfies it.
type Source interface {
	ProjectID() string
	Records() []domain.Sentence
}

type Service struct {
	Reg *exreg.Registry
}

func New(reg *exreg.Registry) *Service { return &Service{Reg: reg} }

type ExportResult struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// Export renders the current (possibly uncommitted) text of every record.
func (s *Service) Export(src Source, format string) (ExportResult, error) {
	exp, ok := s.Reg.Get(format)
	if !ok {
		return ExportResult{}, errors.New("no exporter for format: " + format)
	}
	project := src.ProjectID()
	if project == "" {
		return ExportResult{}, domain.ErrEmptyProject
	}
	records := src.Records()
	items := make([]ports.ExportItem, 0, len(records))
	for _, r := range records {
		items = append(items, ports.ExportItem{SentenceID: r.ID, Original: r.OriginalText, Translation: r.TranslatedText})
	}
	content, err := exp.Export(items)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Filename: project + "." + format, Content: content}, nil
}

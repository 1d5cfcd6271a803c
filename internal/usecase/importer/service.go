package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	parreg "wikitrans/internal/adapters/parser/registry"
	"wikitrans/internal/domain"
)

// Target receives parsed edits; *buffer.Buffer satisfies it.
type Target interface {
	ApplyEdit(id int64, text string) error
}

type Service struct {
	ParserRegistry *parreg.Registry
	Logger         *slog.Logger
}

func New(reg *parreg.Registry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{ParserRegistry: reg, Logger: log}
}

type ImportArgs struct {
	Filename string
	Format   string
	Content  []byte
}

type ImportResult struct {
	Hash    string  `json:"hash"`
	Applied int     `json:"applied"`
	Unknown []int64 `json:"unknown,omitempty"`
}

// Import parses an edits file and applies every edit to t. Edits naming a
// sentence t does not hold are skipped and reported.
func (s *Service) Import(ctx context.Context, t Target, in ImportArgs) (ImportResult, error) {
	parser, ok := s.ParserRegistry.Get(in.Format)
	if !ok {
		return ImportResult{}, errors.New("unsupported format: " + in.Format)
	}
	pr, err := parser.Parse(in.Content)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", in.Filename, err)
	}
	sum := sha256.Sum256(in.Content)
	res := ImportResult{Hash: hex.EncodeToString(sum[:])}
	for _, e := range pr.Edits {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := t.ApplyEdit(e.SentenceID, e.Text); err != nil {
			if errors.Is(err, domain.ErrUnknownRecord) {
				res.Unknown = append(res.Unknown, e.SentenceID)
				continue
			}
			return res, err
		}
		res.Applied++
	}
	s.Logger.Info("edits imported", "file", in.Filename, "format", in.Format, "applied", res.Applied, "unknown", len(res.Unknown), "hash", res.Hash[:12])
	return res, nil
}

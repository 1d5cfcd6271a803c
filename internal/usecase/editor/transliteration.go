package editor

import (
	"context"

	"wikitrans/internal/ports"
)

// Feed routes transliteration output into the edit buffer. Every emitted
// string replaces the record's translated text and is applied exactly once.
type Feed struct {
	T      ports.Transliterator
	Script string
	Apply  func(id int64, text string) error
}

// Emit transliterates raw for the record and applies the result. Without a
// provider or a script the raw text is applied as typed.
func (f Feed) Emit(ctx context.Context, id int64, raw string) (string, error) {
	out := raw
	if f.T != nil && f.Script != "" {
		s, err := f.T.Transliterate(ctx, raw, f.Script)
		if err != nil {
			return "", err
		}
		out = s
	}
	if err := f.Apply(id, out); err != nil {
		return "", err
	}
	return out, nil
}

package ports

import "context"

// Transliterator turns raw keystrokes into text in the target script.
// script is a two-letter language code such as "hi".
type Transliterator interface {
	Transliterate(ctx context.Context, input, script string) (string, error)
}

package ports

// Edit is one translated text addressed by sentence ID, as read from an
// edits file.
type Edit struct {
	SentenceID int64
	Text       string
}

type ParseResult struct {
	Edits []Edit
}

type Parser interface {
	Format() string
	Parse(data []byte) (ParseResult, error)
}

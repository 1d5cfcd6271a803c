package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Sentence is one (original, translated) pair of a project.
// ID is assigned by the backend and never derived from list position.
type Sentence struct {
	ID             int64  `json:"sentence_id"`
	ProjectID      string `json:"project"`
	OriginalText   string `json:"original_sentence"`
	TranslatedText string `json:"translated_sentence"`
	CreatedOn      string `json:"created_on"`
}

// ScriptCode derives the two-letter transliteration code from a project
// identifier of the form "<lang>_<title>".
func ScriptCode(projectID string) (string, error) {
	p := strings.TrimSpace(projectID)
	if len(p) < 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, projectID)
	}
	tag, err := language.Parse(strings.ToLower(p[:2]))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, projectID)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

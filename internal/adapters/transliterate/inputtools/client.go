// Package inputtools transliterates Latin keystrokes into a target script
// using the Google Input Tools endpoint.
package inputtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"

	"wikitrans/internal/domain"
	"wikitrans/internal/ports"
)

const DefaultBaseURL = "https://inputtools.google.com"

type Client struct {
	BaseURL     string
	Suggestions int
	cache       ports.CacheRepository
	http        *resty.Client
	log         *slog.Logger
}

// New returns a client; cache and log may be nil.
func New(baseURL string, suggestions int, cache ports.CacheRepository, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if suggestions <= 0 {
		suggestions = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Suggestions: suggestions,
		cache:       cache,
		http:        resty.New().SetTimeout(10 * time.Second),
		log:         log,
	}
}

// Transliterate converts each run of Latin letters in input to its top
// candidate in script. Everything else is kept as typed.
func (c *Client) Transliterate(ctx context.Context, input, script string) (string, error) {
	script = strings.ToLower(strings.TrimSpace(script))
	if script == "" || script == "en" || input == "" {
		return input, nil
	}
	var out strings.Builder
	for _, tok := range split(input) {
		if !tok.word {
			out.WriteString(tok.text)
			continue
		}
		w, err := c.word(ctx, tok.text, script)
		if err != nil {
			return "", err
		}
		out.WriteString(w)
	}
	return out.String(), nil
}

func (c *Client) word(ctx context.Context, word, script string) (string, error) {
	if c.cache != nil {
		ce, err := c.cache.Get(ctx, word, script)
		if err != nil {
			c.log.Warn("transliteration cache read", "word", word, "script", script, "err", err)
		} else if ce != nil {
			return ce.Output, nil
		}
	}
	var raw []json.RawMessage
	rr, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"text": word,
			"itc":  script + "-t-i0-und",
			"num":  strconv.Itoa(c.Suggestions),
			"cp":   "0",
			"cs":   "1",
			"ie":   "utf-8",
			"oe":   "utf-8",
		}).
		Get(c.BaseURL + "/request")
	if err != nil {
		return "", err
	}
	if rr.IsError() {
		return "", fmt.Errorf("inputtools: %s; body: %s", rr.Status(), rr.String())
	}
	if err := json.Unmarshal(rr.Body(), &raw); err != nil {
		return "", fmt.Errorf("inputtools: decode: %w", err)
	}
	out, err := topCandidate(raw, word)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		if err := c.cache.Put(ctx, &domain.CacheEntry{Input: word, Script: script, Output: out}); err != nil {
			c.log.Warn("transliteration cache write", "word", word, "script", script, "err", err)
		}
	}
	return out, nil
}

// topCandidate reads ["SUCCESS", [[word, [candidates...], ...]]].
func topCandidate(raw []json.RawMessage, word string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("inputtools: unexpected response")
	}
	var status string
	if err := json.Unmarshal(raw[0], &status); err != nil || status != "SUCCESS" {
		return "", fmt.Errorf("inputtools: status %s", string(raw[0]))
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[1], &segments); err != nil {
		return "", fmt.Errorf("inputtools: decode segments: %w", err)
	}
	if len(segments) == 0 || len(segments[0]) < 2 {
		return word, nil
	}
	var cands []string
	if err := json.Unmarshal(segments[0][1], &cands); err != nil || len(cands) == 0 {
		return word, nil
	}
	return cands[0], nil
}

type token struct {
	text string
	word bool
}

func split(s string) []token {
	var out []token
	var cur strings.Builder
	inWord := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, token{text: cur.String(), word: inWord})
			cur.Reset()
		}
	}
	for _, r := range s {
		isWord := r < unicode.MaxASCII && unicode.IsLetter(r)
		if isWord != inWord {
			flush()
			inWord = isWord
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

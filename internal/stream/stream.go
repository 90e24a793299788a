// Package stream emits a finished answer incrementally. Text is split into
// word and whitespace-run tokens so that concatenating every emitted
// fragment reproduces the input exactly, line breaks and list markers
// included.
package stream

import (
	"context"
	"time"
	"unicode"
)

// Token is one emitted fragment: either a word or a whitespace run.
type Token struct {
	Text       string
	Whitespace bool
}

// Tokenize splits text into word and whitespace-run tokens. The
// concatenation of all token texts equals the input.
func Tokenize(text string) []Token {
	var tokens []Token
	runes := []rune(text)
	for i := 0; i < len(runes); {
		ws := unicode.IsSpace(runes[i])
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) == ws {
			j++
		}
		tokens = append(tokens, Token{Text: string(runes[i:j]), Whitespace: ws})
		i = j
	}
	return tokens
}

// Formatter paces the emission of a complete answer. A zero word delay
// emits everything immediately, which tests rely on.
type Formatter struct {
	wordDelay       time.Duration
	whitespaceDelay time.Duration
}

// Option adjusts a Formatter.
type Option func(*Formatter)

// WithWhitespaceDelay sets the pause after each whitespace run. The default
// is zero: whitespace is emitted immediately.
func WithWhitespaceDelay(d time.Duration) Option {
	return func(f *Formatter) { f.whitespaceDelay = d }
}

// NewFormatter creates a formatter with the given pause after each word.
func NewFormatter(wordDelay time.Duration, opts ...Option) *Formatter {
	f := &Formatter{wordDelay: wordDelay}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Stream emits the text fragment by fragment, pausing after each token for
// its configured delay (words and whitespace runs separately). Emission
// stops when ctx is canceled or emit returns an error. A fresh call always
// starts from the beginning of text.
func (f *Formatter) Stream(ctx context.Context, text string, emit func(string) error) error {
	for _, tok := range Tokenize(text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(tok.Text); err != nil {
			return err
		}
		delay := f.wordDelay
		if tok.Whitespace {
			delay = f.whitespaceDelay
		}
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

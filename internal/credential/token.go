// Package credential acquires the repository API token for one run.
//
// The token lives only in memory. It is never read from flags or the
// environment, and its fmt verbs print a placeholder so it cannot leak into
// logs by accident.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// ErrEmptyToken is returned when the user submits nothing at the prompt.
var ErrEmptyToken = errors.New("no API token entered")

// Token is an opaque bearer credential.
type Token struct {
	value string
}

// NewToken wraps a raw token, dropping the line ending a paste may carry.
func NewToken(raw string) (Token, error) {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(raw) == "" {
		return Token{}, ErrEmptyToken
	}
	return Token{value: raw}, nil
}

// Reveal returns the raw token. Only the HTTP client should call it.
func (t Token) Reveal() string {
	return t.value
}

// IsZero reports whether no token was acquired.
func (t Token) IsZero() bool {
	return t.value == ""
}

func (t Token) String() string {
	return redacted
}

func (t Token) GoString() string {
	return redacted
}

// Format keeps %v, %+v, %#v, %s and %q on the placeholder.
func (t Token) Format(f fmt.State, verb rune) {
	switch verb {
	case 'q':
		fmt.Fprintf(f, "%q", redacted)
	default:
		fmt.Fprint(f, redacted)
	}
}

// MarshalText stops encoders from writing the raw value.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

func (t Token) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Source yields the token for a run. It is called once, after validation.
type Source interface {
	Token(ctx context.Context) (Token, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Token, error)

func (f SourceFunc) Token(ctx context.Context) (Token, error) {
	return f(ctx)
}

// Static returns a Source that always yields t.
func Static(t Token) Source {
	return SourceFunc(func(context.Context) (Token, error) {
		return t, nil
	})
}

package credential

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PromptText is shown before the masked token input.
const PromptText = "Paste in your RDR API token and press Enter:"

// ErrNotTerminal is returned when there is no terminal to read the token from.
var ErrNotTerminal = errors.New("API token must be entered on a terminal")

// Prompt reads the token from a terminal with echo turned off.
type Prompt struct {
	// In is the terminal to read from
	In *os.File

	// Out receives the prompt text
	Out io.Writer
}

// NewPrompt prompts on stdin, writing the prompt to stderr so stdout only
// carries upload results.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stderr}
}

func (p *Prompt) Token(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}

	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return Token{}, ErrNotTerminal
	}

	fmt.Fprint(p.Out, PromptText)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return Token{}, fmt.Errorf("failed to read API token: %w", err)
	}

	return NewToken(string(raw))
}

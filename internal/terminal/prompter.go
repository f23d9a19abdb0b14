package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/glefebvre/mediadesk/internal/picker"
)

// Prompter asks questions on a line-oriented terminal. End of input and "q"
// at a choice abort the prompt.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter reading from in and writing to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", picker.ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Input reads one line after printing label
func (p *Prompter) Input(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine(ctx)
}

// Choose lists the choices by number and returns the chosen id. An empty
// answer chooses nothing; "q" aborts.
func (p *Prompter) Choose(ctx context.Context, title string, choices []picker.Choice) (int, error) {
	fmt.Fprintln(p.out, title)
	for i, c := range choices {
		fmt.Fprintf(p.out, "  %2d) %s [%d]\n", i+1, c.Label, c.ID)
	}

	for {
		fmt.Fprint(p.out, "Choice (number, empty for none, q to cancel): ")
		answer, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		switch answer {
		case "":
			return 0, nil
		case "q", "Q":
			return 0, picker.ErrAborted
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(choices) {
			fmt.Fprintf(p.out, "invalid choice %q\n", answer)
			continue
		}
		return choices[n-1].ID, nil
	}
}

// Confirm asks a yes/no question, defaulting to no
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine(ctx)
	if errors.Is(err, picker.ErrAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "o", "oui":
		return true, nil
	}
	return false, nil
}

package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/glefebvre/mediadesk/internal/table"
)

const (
	defaultRows = 24
	defaultCols = 80
)

// Size returns the terminal size of f, or 24x80 when f is not a terminal
func Size(f *os.File) (rows, cols int) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Row == 0 {
		return defaultRows, defaultCols
	}
	return int(ws.Row), int(ws.Col)
}

// Pager pages a table controller on a terminal. Each row is one line; the
// scroll position is the first displayed line, the viewport is the screen
// height and the document is the list of rows currently paged in. Reaching
// the bottom grows the controller page the same way a browser scroll does.
//
// Commands at the prompt: Enter next screen, "/text" search, "f facet"
// filter, "s field" sort, "r" reverse, "q" quit.
type Pager[T any] struct {
	in     *bufio.Reader
	out    io.Writer
	height int
	width  int
	render func(T) string

	offset int
}

// NewPager creates a pager of height lines
func NewPager[T any](in io.Reader, out io.Writer, height, width int, render func(T) string) *Pager[T] {
	if height < 2 {
		height = defaultRows
	}
	if width < 1 {
		width = defaultCols
	}
	return &Pager[T]{in: bufio.NewReader(in), out: out, height: height, width: width, render: render}
}

// ScrollToTop implements table.Viewport
func (p *Pager[T]) ScrollToTop() {
	p.offset = 0
}

// Run displays ctrl until the rows are exhausted or the user quits. ctrl
// must have been created with the pager as its Viewport.
func (p *Pager[T]) Run(ctx context.Context, ctrl *table.Controller[T]) error {
	screen := p.height - 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rows := ctrl.Visible()
		if p.offset > len(rows) {
			p.offset = 0
		}
		rows = p.fill(ctrl, rows, screen)
		end := min(p.offset+screen, len(rows))
		for _, row := range rows[p.offset:end] {
			fmt.Fprintln(p.out, p.clip(p.render(row)))
		}

		matches := ctrl.Matches()
		if end >= matches {
			fmt.Fprintf(p.out, "(%d of %d, order %s)\n", matches, matches, ctrl.OrderValue())
		}
		fmt.Fprintf(p.out, "-- %d/%d -- ", end, matches)

		line, err := p.in.ReadString('\n')
		cmd := strings.TrimSpace(line)
		if err != nil && cmd == "" {
			return nil
		}

		switch {
		case cmd == "q":
			return nil
		case cmd == "r":
			ctrl.Reverse()
		case strings.HasPrefix(cmd, "/"):
			ctrl.SetSearch(strings.TrimPrefix(cmd, "/"))
		case strings.HasPrefix(cmd, "f "), cmd == "f":
			ctrl.SetFacet(strings.TrimSpace(strings.TrimPrefix(cmd, "f")))
		case strings.HasPrefix(cmd, "s "):
			if err := ctrl.SortBy(strings.TrimSpace(cmd[2:])); err != nil {
				fmt.Fprintln(p.out, err)
			}
		case cmd == "":
			if end >= matches {
				return nil
			}
			p.offset = end
		default:
			fmt.Fprintf(p.out, "unknown command %q\n", cmd)
		}
	}
}

// fill reports the scroll position until the rows paged in cover the screen
// or every match is paged in.
func (p *Pager[T]) fill(ctrl *table.Controller[T], rows []T, screen int) []T {
	for len(rows) < p.offset+screen && len(rows) < ctrl.Matches() {
		if !ctrl.OnScroll(p.offset, screen, len(rows)) {
			break
		}
		rows = ctrl.Visible()
	}
	return rows
}

func (p *Pager[T]) clip(s string) string {
	r := []rune(s)
	if len(r) <= p.width {
		return s
	}
	return string(r[:p.width-1]) + "…"
}

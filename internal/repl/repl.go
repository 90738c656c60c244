package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"jasper/internal/lexer"
	"jasper/internal/runner"
	"jasper/internal/token"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
)

const (
	PROMPT      = ">> "
	CONT_PROMPT = ".. "
)

// lineReader yields one line per call and io.EOF when input ends.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Remember(entry string)
	Close() error
}

// Start reads expressions until input ends. Each complete expression is run
// against r, so definitions persist between entries. A terminal on stdin
// gets line editing and history.
func Start(ctx context.Context, r *runner.Runner, in io.Reader, out io.Writer) error {
	lines := newLineReader(in, out)
	defer lines.Close()

	var pending strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		prompt := PROMPT
		if pending.Len() > 0 {
			prompt = CONT_PROMPT
		}
		line, err := lines.ReadLine(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			pending.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			if pending.Len() > 0 {
				evalEntry(ctx, r, out, pending.String())
			}
			return nil
		}
		if err != nil {
			return err
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		if depth(pending.String()) > 0 {
			continue
		}

		entry := pending.String()
		pending.Reset()
		if strings.TrimSpace(entry) == "" {
			continue
		}
		lines.Remember(strings.TrimSpace(entry))
		evalEntry(ctx, r, out, entry)
	}
}

func evalEntry(ctx context.Context, r *runner.Runner, out io.Writer, src string) {
	val, err := r.Run(ctx, src)
	if err != nil {
		slog.Debug("repl entry failed", slog.Any("error", err))
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if val != nil {
		io.WriteString(out, val.Inspect())
		io.WriteString(out, "\n")
	}
}

// depth reports how many forms src leaves open. Comments are ignored.
func depth(src string) int {
	d := 0
	for _, tok := range lexer.Tokenize(src) {
		switch tok.Type {
		case token.OPEN:
			d++
		case token.CLOSE:
			d--
		}
	}
	return d
}

func newLineReader(in io.Reader, out io.Writer) lineReader {
	if f, ok := in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		state.SetMultiLineMode(true)
		return &terminalReader{state: state}
	}
	return &plainReader{in: bufio.NewReader(in), out: out}
}

type terminalReader struct {
	state *liner.State
}

func (t *terminalReader) ReadLine(prompt string) (string, error) { return t.state.Prompt(prompt) }
func (t *terminalReader) Remember(entry string)                   { t.state.AppendHistory(entry) }
func (t *terminalReader) Close() error                            { return t.state.Close() }

type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *plainReader) ReadLine(prompt string) (string, error) {
	io.WriteString(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (p *plainReader) Remember(string) {}
func (p *plainReader) Close() error   { return nil }

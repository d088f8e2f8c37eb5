package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/replay"
	"github.com/dshills/textcore/internal/script"
)

// Replay applies a YAML edit script and prints the events it produced
// followed by the final text.
func (app *Application) Replay(ctx context.Context, path string) error {
	s, err := replay.Load(path)
	if err != nil {
		return err
	}

	buf := app.NewBuffer(s.Initial)
	printer := PrintEvents(buf, app.opts.Stdout, app.Config().Bus.EndpointCapacity)

	applied, err := s.Apply(ctx, buf)
	printer.Stop()
	app.logger.Debug("replayed %d of %d edits from %s", applied, len(s.Edits), path)
	if err != nil {
		return err
	}
	if err := s.Verify(buf); err != nil {
		return err
	}

	fmt.Fprintln(app.opts.Stdout, buf.Text())
	return nil
}

// RunLua executes a Lua script against an empty buffer.
func (app *Application) RunLua(ctx context.Context, path string) error {
	buf := app.NewBuffer("")
	printer := PrintEvents(buf, app.opts.Stdout, app.Config().Bus.EndpointCapacity)

	runner := script.NewRunner(buf, script.WithOutput(app.opts.Stdout))
	defer runner.Close()

	err := runner.RunFile(ctx, path)
	printer.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintln(app.opts.Stdout, buf.Text())
	return nil
}

// Stats summarizes a file loaded into a buffer.
type Stats struct {
	FileName  string
	Language  string
	Bytes     uint64
	Lines     int
	Graphemes int
}

// Stat loads path into a document and reports its size.
func (app *Application) Stat(path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, err
	}

	doc := app.OpenDocument(path, string(data))
	buf := doc.TextBuffer()
	return Stats{
		FileName:  doc.FileName(),
		Language:  doc.Language(),
		Bytes:     buf.LenBytes(),
		Lines:     buf.LenLines(),
		Graphemes: uniseg.GraphemeClusterCount(buf.Text()),
	}, nil
}

// PrintStat writes the Stat result for path.
func (app *Application) PrintStat(path string) error {
	st, err := app.Stat(path)
	if err != nil {
		return err
	}
	w := app.opts.Stdout
	fmt.Fprintf(w, "file:      %s\n", st.FileName)
	fmt.Fprintf(w, "language:  %s\n", st.Language)
	fmt.Fprintf(w, "bytes:     %d\n", st.Bytes)
	fmt.Fprintf(w, "lines:     %d\n", st.Lines)
	fmt.Fprintf(w, "graphemes: %d\n", st.Graphemes)
	return nil
}

// REPL reads edit commands from in until EOF or "q".
//
//	i POS TEXT   insert TEXT at POS
//	r POS LEN    remove LEN bytes at POS
//	p            print the buffer
//	q            quit
func (app *Application) REPL(ctx context.Context, in io.Reader) error {
	buf := app.NewBuffer("")
	printer := PrintEvents(buf, app.opts.Stdout, app.Config().Bus.EndpointCapacity)
	defer printer.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		err := app.execute(ctx, buf, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(app.opts.Stdout, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (app *Application) execute(ctx context.Context, buf *buffer.TextBuffer, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "q", "quit":
		return ErrQuit
	case "p", "print":
		fmt.Fprintf(app.opts.Stdout, "%q\n", buf.Text())
		return nil
	case "i", "insert":
		posStr, text, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: i POS TEXT")
		}
		pos, err := strconv.ParseUint(posStr, 10, 64)
		if err != nil {
			return fmt.Errorf("bad position %q", posStr)
		}
		return buf.Insert(ctx, pos, text)
	case "r", "remove":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return fmt.Errorf("usage: r POS LEN")
		}
		pos, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad position %q", fields[0])
		}
		n, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad length %q", fields[1])
		}
		return buf.Remove(ctx, pos, n)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

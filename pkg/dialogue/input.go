package dialogue

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// inputReader reads one user message per call, either a single line or every
// line up to end of input. It does not treat end of input as sticky, so a
// terminal user can keep typing after Ctrl-D in multi-line mode.
type inputReader struct {
	r         *bufio.Reader
	multiline bool
}

func newInputReader(r io.Reader, multiline bool) *inputReader {
	return &inputReader{r: bufio.NewReader(r), multiline: multiline}
}

// Read returns the next message, or io.EOF when input ended before any text
func (in *inputReader) Read() (string, error) {
	if !in.multiline {
		line, err := in.r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return trimNewline(line), nil
	}

	var lines []string
	for {
		line, err := in.r.ReadString('\n')
		if err == nil {
			lines = append(lines, trimNewline(line))
			continue
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line != "" {
			lines = append(lines, trimNewline(line))
		}
		if len(lines) == 0 {
			return "", io.EOF
		}
		return strings.Join(lines, "\n"), nil
	}
}

func trimNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

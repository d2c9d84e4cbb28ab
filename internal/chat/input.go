package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultPrompt is shown before each line when prompting is enabled.
const DefaultPrompt = "Enter a message: "

// LineReader reads operator input one line at a time.
type LineReader struct {
	r         *bufio.Reader
	prompt    string
	promptOut io.Writer
}

// NewLineReader creates a LineReader over r. Lines have no length limit.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// SetPrompt makes NextLine write prompt to w before every read.
// An empty prompt disables prompting.
func (l *LineReader) SetPrompt(w io.Writer, prompt string) {
	l.promptOut = w
	l.prompt = prompt
}

// NextLine implements LineSource.
// The line ending ("\n" or "\r\n") is stripped. A final line without a
// newline is still returned; io.EOF follows once input is exhausted.
func (l *LineReader) NextLine() (string, error) {
	if l.prompt != "" && l.promptOut != nil {
		fmt.Fprint(l.promptOut, l.prompt)
	}

	line, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return trimLineEnding(line), nil
		}
		return "", err
	}
	return trimLineEnding(line), nil
}

func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

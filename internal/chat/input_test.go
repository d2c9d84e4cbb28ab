package chat_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/omochice/framechat/internal/chat"
)

func TestLineReader_NextLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"unix line endings", "hello\nworld\n", []string{"hello", "world"}},
		{"windows line endings", "hello\r\nworld\r\n", []string{"hello", "world"}},
		{"final line without newline", "hello\nworld", []string{"hello", "world"}},
		{"empty lines are kept", "\n\nFin\n", []string{"", "", "Fin"}},
		{"surrounding spaces are kept", "  Fin  \n", []string{"  Fin  "}},
		{"no input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chat.NewLineReader(strings.NewReader(tt.input))

			var got []string
			for {
				line, err := r.NextLine()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("NextLine() error = %v", err)
				}
				got = append(got, line)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("NextLine() lines = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLineReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	r := chat.NewLineReader(strings.NewReader(long + "\n"))

	line, err := r.NextLine()
	if err != nil {
		t.Fatalf("NextLine() error = %v", err)
	}
	if len(line) != len(long) {
		t.Errorf("NextLine() length = %d, want %d", len(line), len(long))
	}
}

func TestLineReader_Prompt(t *testing.T) {
	var prompts strings.Builder
	r := chat.NewLineReader(strings.NewReader("one\n"))
	r.SetPrompt(&prompts, chat.DefaultPrompt)

	if _, err := r.NextLine(); err != nil {
		t.Fatalf("NextLine() error = %v", err)
	}
	if _, err := r.NextLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("NextLine() error = %v, want io.EOF", err)
	}

	want := chat.DefaultPrompt + chat.DefaultPrompt
	if prompts.String() != want {
		t.Errorf("prompts = %q, want %q", prompts.String(), want)
	}
}

func TestLineReader_PropagatesReadError(t *testing.T) {
	r := chat.NewLineReader(io.MultiReader(strings.NewReader("partial"), errReader{}))

	if _, err := r.NextLine(); !errors.Is(err, errBoom) {
		t.Fatalf("NextLine() error = %v, want %v", err, errBoom)
	}
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errBoom
}

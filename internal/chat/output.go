package chat

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// ConsoleSink prints received messages as "Message from <peer>: <text>".
type ConsoleSink struct {
	w     io.Writer
	label string
	color bool
}

// NewConsoleSink creates a ConsoleSink writing to w. When color is true the
// label is styled for a terminal.
func NewConsoleSink(w io.Writer, peer string, color bool) *ConsoleSink {
	return &ConsoleSink{
		w:     w,
		label: fmt.Sprintf("Message from %s:", peer),
		color: color,
	}
}

// Display implements Sink. Write errors are ignored.
func (s *ConsoleSink) Display(msg []byte) {
	label := s.label
	if s.color {
		label = labelStyle.Render(label)
	}
	fmt.Fprintf(s.w, "%s %s\n", label, msg)
}

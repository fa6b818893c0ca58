package cli

import (
	"fmt"
	"io"

	"github.com/tablevoice/widget/internal/classify"
	"github.com/tablevoice/widget/internal/quickaction"
	"github.com/tablevoice/widget/internal/session"
)

// Console renders exchange side effects to a terminal and keeps the
// currently visible quick-action row so the chat loop can resolve numeric
// input into button messages.
type Console struct {
	out     io.Writer
	title   string
	buttons []quickaction.Button
}

// NewConsole creates a console UI writing to out.
func NewConsole(out io.Writer, title string) *Console {
	return &Console{out: out, title: title}
}

// Banner prints the widget header once at startup.
func (c *Console) Banner() {
	fmt.Fprintf(c.out, "=== %s ===\n", c.title)
}

func (c *Console) SetInputEnabled(enabled bool) {
	// Terminal input is modal; the chat loop only reads between exchanges.
}

func (c *Console) ShowTyping(visible bool) {
	if visible {
		fmt.Fprintln(c.out, "...")
	}
}

func (c *Console) AppendMessage(msg session.Message) {
	prefix := "you"
	if msg.Role == session.RoleAssistant {
		prefix = "assistant"
	}
	fmt.Fprintf(c.out, "[%s] %s\n", prefix, msg.Content)
}

func (c *Console) ClearQuickActions() {
	c.buttons = nil
}

func (c *Console) ShowQuickAction(a classify.Affordance, buttons []quickaction.Button) {
	c.buttons = buttons
	fmt.Fprintf(c.out, "(%s)", a)
	for i, b := range buttons {
		fmt.Fprintf(c.out, "  %d=%s", i+1, b.Label)
	}
	fmt.Fprintln(c.out)
}

// Button resolves a 1-based index into the visible row, if any.
func (c *Console) Button(n int) (quickaction.Button, bool) {
	if n < 1 || n > len(c.buttons) {
		return quickaction.Button{}, false
	}
	return c.buttons[n-1], true
}

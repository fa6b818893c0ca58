package exchange

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/tablevoice/widget/internal/classify"
	"github.com/tablevoice/widget/internal/metrics"
	"github.com/tablevoice/widget/internal/quickaction"
	"github.com/tablevoice/widget/internal/session"
	"github.com/tablevoice/widget/internal/transport"
)

type fakeClient struct {
	textReply string
	textErr   error
	audioResp *transport.AudioResponse
	audioErr  error

	textCalls  int
	audioCalls int
	onSendText func()
}

func (c *fakeClient) SendText(ctx context.Context, sessionID, message string) (string, error) {
	c.textCalls++
	if c.onSendText != nil {
		c.onSendText()
	}
	return c.textReply, c.textErr
}

func (c *fakeClient) SendAudio(ctx context.Context, sessionID string, clip []byte, mimeType string) (*transport.AudioResponse, error) {
	c.audioCalls++
	return c.audioResp, c.audioErr
}

// fakeUI records the side-effect sequence so tests can assert ordering.
type fakeUI struct {
	events      []string
	shown       []classify.Affordance
	lastButtons []quickaction.Button
}

func (u *fakeUI) SetInputEnabled(enabled bool) {
	u.events = append(u.events, fmt.Sprintf("input:%t", enabled))
}

func (u *fakeUI) ShowTyping(visible bool) {
	u.events = append(u.events, fmt.Sprintf("typing:%t", visible))
}

func (u *fakeUI) AppendMessage(msg session.Message) {
	u.events = append(u.events, "append:"+msg.Role)
}

func (u *fakeUI) ClearQuickActions() {
	u.events = append(u.events, "clear")
	u.shown = nil
}

func (u *fakeUI) ShowQuickAction(a classify.Affordance, buttons []quickaction.Button) {
	u.events = append(u.events, "show:"+a.String())
	u.shown = append(u.shown, a)
	u.lastButtons = buttons
}

func newTestOrchestrator(c *fakeClient) (*Orchestrator, *fakeUI) {
	ui := &fakeUI{}
	o := New(c, ui, "sess_1", "Welcome!", nil)
	return o, ui
}

func TestNew_SeedsWelcomeMessage(t *testing.T) {
	o, ui := newTestOrchestrator(&fakeClient{})

	msgs := o.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, session.RoleAssistant, msgs[0].Role)
	require.Equal(t, "Welcome!", msgs[0].Content)
	require.Equal(t, []string{"append:assistant"}, ui.events)
}

func TestSendText_AppliesReplyAndAffordance(t *testing.T) {
	c := &fakeClient{textReply: "When would you like to visit?"}
	o, ui := newTestOrchestrator(c)

	require.NoError(t, o.SendText(context.Background(), "Table for two"))

	require.Equal(t, []string{
		"append:assistant", // welcome
		"input:false",
		"typing:true",
		"append:user",
		"append:assistant",
		"clear",
		"show:date",
		"typing:false",
		"input:true",
	}, ui.events)
	require.Len(t, ui.lastButtons, 5)
	require.Equal(t, "Today", ui.lastButtons[0].Label)

	msgs := o.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "Table for two", msgs[1].Content)
	require.Equal(t, "When would you like to visit?", msgs[2].Content)
	require.False(t, o.Busy())
}

// TestSendText_NoStaleAffordance: each turn clears the previous affordance
// before applying the new decision, so at most one is ever visible.
func TestSendText_NoStaleAffordance(t *testing.T) {
	c := &fakeClient{textReply: "When would you like to visit?"}
	o, ui := newTestOrchestrator(c)

	require.NoError(t, o.SendText(context.Background(), "hi"))
	require.Equal(t, []classify.Affordance{classify.Date}, ui.shown)

	c.textReply = "Great! What time would you like?"
	require.NoError(t, o.SendText(context.Background(), "Friday"))
	require.Equal(t, []classify.Affordance{classify.Time}, ui.shown)

	c.textReply = "You're all set. See you Friday!"
	require.NoError(t, o.SendText(context.Background(), "19:00"))
	require.Empty(t, ui.shown, "no affordance for unclassified text")
}

func TestSendText_TransportErrorApologizes(t *testing.T) {
	c := &fakeClient{textErr: errors.New("connection refused")}
	o, ui := newTestOrchestrator(c)

	require.NoError(t, o.SendText(context.Background(), "hello"))

	msgs := o.Messages()
	require.Equal(t, ApologyMessage, msgs[len(msgs)-1].Content)
	require.Equal(t, session.RoleAssistant, msgs[len(msgs)-1].Role)
	require.Empty(t, ui.shown, "affordances stay cleared on failure")

	// Interface is usable again.
	require.False(t, o.Busy())
	c.textErr = nil
	c.textReply = "How many guests?"
	require.NoError(t, o.SendText(context.Background(), "retry"))
	require.Equal(t, []classify.Affordance{classify.Guests}, ui.shown)
}

// TestSendText_SecondSendWhileOutstanding: the one-outstanding-exchange rule
// holds even if the disable discipline is bypassed.
func TestSendText_SecondSendWhileOutstanding(t *testing.T) {
	c := &fakeClient{textReply: "ok"}
	o, _ := newTestOrchestrator(c)

	var nested error
	c.onSendText = func() {
		nested = o.SendText(context.Background(), "sneaky second send")
	}

	require.NoError(t, o.SendText(context.Background(), "first"))
	require.ErrorIs(t, nested, ErrBusy)
	require.Equal(t, 1, c.textCalls)
}

func TestSendText_EmptyMessageIsNoop(t *testing.T) {
	c := &fakeClient{}
	o, ui := newTestOrchestrator(c)

	require.NoError(t, o.SendText(context.Background(), ""))
	require.Equal(t, 0, c.textCalls)
	require.Equal(t, []string{"append:assistant"}, ui.events)
}

func TestSendClip_AppendsTranscriptionThenReply(t *testing.T) {
	c := &fakeClient{audioResp: &transport.AudioResponse{
		Success:         true,
		TranscribedText: "table for four tonight",
		Response:        "Is everything correct? Say 'confirmed' to proceed.",
	}}
	o, ui := newTestOrchestrator(c)

	require.NoError(t, o.SendClip(context.Background(), []byte("clipdata"), "audio/webm"))

	msgs := o.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, session.RoleUser, msgs[1].Role)
	require.Equal(t, "table for four tonight", msgs[1].Content)
	require.Equal(t, []classify.Affordance{classify.Confirm}, ui.shown)
}

func TestSendClip_EmptyClipIsNoop(t *testing.T) {
	c := &fakeClient{}
	o, _ := newTestOrchestrator(c)

	require.NoError(t, o.SendClip(context.Background(), nil, "audio/webm"))
	require.Equal(t, 0, c.audioCalls)
}

func TestSendClip_TransportErrorApologizes(t *testing.T) {
	c := &fakeClient{audioErr: errors.New("boom")}
	o, ui := newTestOrchestrator(c)

	require.NoError(t, o.SendClip(context.Background(), []byte("x"), "audio/wav"))

	msgs := o.Messages()
	require.Equal(t, ApologyMessage, msgs[len(msgs)-1].Content)
	require.Empty(t, ui.shown)
}

func TestMetricsObserved(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	c := &fakeClient{textReply: "ok", audioErr: errors.New("down")}
	o := New(c, &fakeUI{}, "sess_1", "", m)

	require.NoError(t, o.SendText(context.Background(), "hi"))
	require.NoError(t, o.SendClip(context.Background(), []byte("x"), "audio/wav"))

	families, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	require.True(t, found["widget_exchanges_total"])
	require.True(t, found["widget_exchange_duration_seconds"])
	require.True(t, found["widget_clip_bytes"])
}

// Package exchange implements the message exchange orchestrator: it owns
// the message log, enforces the one-outstanding-send rule, and drives the UI
// side effects around each request (disable input, typing indicator, quick
// action affordances).
package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/tablevoice/widget/internal/classify"
	"github.com/tablevoice/widget/internal/logger"
	"github.com/tablevoice/widget/internal/metrics"
	"github.com/tablevoice/widget/internal/quickaction"
	"github.com/tablevoice/widget/internal/session"
	"github.com/tablevoice/widget/internal/transport"
)

// Apology substituted into the log when the transport fails. The interface
// always comes back usable.
const ApologyMessage = "Sorry, I'm having trouble connecting right now. Please try again in a moment."

// ErrBusy is returned when a send is attempted while one is outstanding.
// The UI's disable discipline normally prevents this from ever surfacing.
var ErrBusy = errors.New("an exchange is already in flight")

// Client is the subset of the transport layer the orchestrator needs; it is
// easy to fake in tests.
type Client interface {
	SendText(ctx context.Context, sessionID, message string) (string, error)
	SendAudio(ctx context.Context, sessionID string, clip []byte, mimeType string) (*transport.AudioResponse, error)
}

// UI receives the presentation side effects of an exchange. Implementations
// must tolerate being called once per exchange phase in order: disable,
// typing on, typing off, enable.
type UI interface {
	SetInputEnabled(enabled bool)
	ShowTyping(visible bool)
	AppendMessage(msg session.Message)
	// ClearQuickActions removes every visible affordance. It always runs
	// before ShowQuickAction so no stale affordance survives a new turn.
	ClearQuickActions()
	ShowQuickAction(a classify.Affordance, buttons []quickaction.Button)
}

// Orchestrator ties one widget activation together. It exclusively owns the
// message log; the capture controller hands clips over as opaque payloads.
type Orchestrator struct {
	client    Client
	ui        UI
	log       *session.Log
	sessionID string
	metrics   *metrics.Metrics
	now       func() time.Time

	busy bool
}

// New creates an orchestrator and seeds the log with the welcome message.
// m may be nil to disable instrumentation.
func New(client Client, ui UI, sessionID, welcomeMessage string, m *metrics.Metrics) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		ui:        ui,
		log:       session.NewLog(),
		sessionID: sessionID,
		metrics:   m,
		now:       time.Now,
	}
	if welcomeMessage != "" {
		ui.AppendMessage(o.log.Append(session.RoleAssistant, welcomeMessage))
	}
	return o
}

// SessionID returns the correlation id sent with every request.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// Messages returns a snapshot of the conversation log.
func (o *Orchestrator) Messages() []session.Message { return o.log.Messages() }

// Busy reports whether an exchange is outstanding.
func (o *Orchestrator) Busy() bool { return o.busy }

// SendText sends a typed or quick-action message and applies the assistant's
// reply. Transport failures are absorbed into an apology message and never
// returned as errors.
func (o *Orchestrator) SendText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	release, err := o.acquire()
	if err != nil {
		return err
	}
	defer release()

	o.ui.AppendMessage(o.log.Append(session.RoleUser, text))

	started := time.Now()
	reply, err := o.client.SendText(ctx, o.sessionID, text)
	o.observe("text", started, err)
	if err != nil {
		o.apologize(err)
		return nil
	}

	o.applyReply(reply)
	return nil
}

// SendClip uploads an encoded voice clip. On success the server-side
// transcription is appended as the user message, then the reply is applied
// exactly like a text exchange.
func (o *Orchestrator) SendClip(ctx context.Context, clip []byte, mimeType string) error {
	if len(clip) == 0 {
		return nil
	}
	release, err := o.acquire()
	if err != nil {
		return err
	}
	defer release()

	if o.metrics != nil {
		o.metrics.ClipBytes.Observe(float64(len(clip)))
	}

	started := time.Now()
	resp, err := o.client.SendAudio(ctx, o.sessionID, clip, mimeType)
	o.observe("audio", started, err)
	if err != nil {
		o.apologize(err)
		return nil
	}

	if resp.TranscribedText != "" {
		o.ui.AppendMessage(o.log.Append(session.RoleUser, resp.TranscribedText))
	}
	o.applyReply(resp.Response)
	return nil
}

// acquire enforces the single-outstanding-send rule and runs the disable /
// typing sequence. The returned release reverses it.
func (o *Orchestrator) acquire() (func(), error) {
	if o.busy {
		return nil, ErrBusy
	}
	o.busy = true
	o.ui.SetInputEnabled(false)
	o.ui.ShowTyping(true)
	return func() {
		o.ui.ShowTyping(false)
		o.ui.SetInputEnabled(true)
		o.busy = false
	}, nil
}

// applyReply appends the assistant message and recomputes the quick-action
// affordance from scratch: previous state is fully discarded first.
func (o *Orchestrator) applyReply(reply string) {
	o.ui.AppendMessage(o.log.Append(session.RoleAssistant, reply))

	o.ui.ClearQuickActions()
	switch a := classify.Classify(reply); a {
	case classify.Date:
		o.ui.ShowQuickAction(a, quickaction.DateButtons(o.now()))
	case classify.Time:
		o.ui.ShowQuickAction(a, quickaction.TimeButtons())
	case classify.Guests:
		o.ui.ShowQuickAction(a, quickaction.GuestButtons())
	case classify.Confirm:
		o.ui.ShowQuickAction(a, quickaction.ConfirmButtons())
	}
}

// apologize substitutes the fixed apology for a failed exchange. The
// classifier is not invoked; affordances stay cleared.
func (o *Orchestrator) apologize(err error) {
	logger.L.Warn("exchange failed", "error", err)
	o.ui.ClearQuickActions()
	o.ui.AppendMessage(o.log.Append(session.RoleAssistant, ApologyMessage))
}

func (o *Orchestrator) observe(kind string, started time.Time, err error) {
	if o.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.metrics.ExchangesTotal.WithLabelValues(kind, result).Inc()
	o.metrics.ExchangeDuration.Observe(time.Since(started).Seconds())
}

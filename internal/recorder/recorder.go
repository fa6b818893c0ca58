// Package recorder implements the voice capture controller: one recording
// session at a time, driven through an Idle -> Recording -> Stopping -> Idle
// state machine, producing a single transport-ready encoded clip per
// completed session.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/tablevoice/widget/internal/audio"
	"github.com/tablevoice/widget/internal/logger"
	"github.com/tablevoice/widget/internal/media"
)

// FSM states
type FSMState stateless.State

var (
	StateIdle      FSMState = "Idle"
	StateRecording FSMState = "Recording"
	StateStopping  FSMState = "Stopping"
)

// FSM triggers
type FSMTrigger stateless.Trigger

var (
	TriggerStart    FSMTrigger = "Start"
	TriggerStop     FSMTrigger = "Stop"
	TriggerCancel   FSMTrigger = "Cancel"
	TriggerFinalize FSMTrigger = "Finalize"
)

// Capture strategies
const (
	StrategyPrimary  = "primary"
	StrategyFallback = "fallback"
)

var (
	ErrAlreadyRecording = errors.New("a recording session is already active")
	ErrNotRecording     = errors.New("no recording session is active")
)

// Clip is a finished, encoded recording ready for transport.
type Clip struct {
	Data     []byte
	MIMEType string
}

// Config holds capture parameters.
type Config struct {
	SampleRate      int
	Timeslice       time.Duration
	ProcessorBuffer int
	EchoCancel      bool
	NoiseSuppress   bool
}

// MIME types probed against the native recorder, in preference order.
var preferredMIMETypes = []string{
	"audio/webm;codecs=opus",
	"audio/webm",
	"audio/mp4",
	"audio/ogg;codecs=opus",
	"audio/wav",
}

// recordingSession is the transient state of one start/stop cycle. It is
// exclusively owned by the Controller and destroyed the moment a clip is
// produced or the session is cancelled.
type recordingSession struct {
	strategy   string
	mimeType   string
	chunks     [][]byte            // primary: encoded fragments in arrival order
	samples    *audio.SampleBuffer // fallback: raw float buffers
	sampleRate int

	stream media.Stream
	rec    media.ChunkRecorder
	proc   media.SampleProcessor

	elapsedSeconds int
	tickStop       chan struct{}
}

// Controller manages the recording lifecycle. All public methods are safe
// for use from the single cooperative flow the widget runs in; a mutex
// additionally guards against callback reentrancy from test doubles.
type Controller struct {
	// OnClip receives the encoded clip after a successful stop. Set before
	// the first Start; never invoked for cancelled or empty sessions.
	OnClip func(Clip)

	// OnTick, when set, receives the elapsed whole seconds once per second
	// while recording.
	OnTick func(seconds int)

	platform media.Platform
	cfg      Config

	mu   sync.Mutex
	fsm  *stateless.StateMachine
	sess *recordingSession
}

// New creates a controller in Idle.
func New(platform media.Platform, cfg Config) *Controller {
	c := &Controller{platform: platform, cfg: cfg}

	fsm := stateless.NewStateMachine(StateIdle)
	fsm.Configure(StateIdle).
		Permit(TriggerStart, StateRecording)
	fsm.Configure(StateRecording).
		Permit(TriggerStop, StateStopping).
		Permit(TriggerCancel, StateIdle).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.startTicker()
			return nil
		}).
		OnExit(func(_ context.Context, _ ...any) error {
			c.stopTicker()
			return nil
		})
	fsm.Configure(StateStopping).
		Permit(TriggerFinalize, StateIdle)

	c.fsm = fsm
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() FSMState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.MustState().(FSMState)
}

// Recording reports whether a session is currently active.
func (c *Controller) Recording() bool {
	return c.State() == StateRecording
}

// Start acquires the microphone, selects a capture strategy and begins a
// recording session. On any failure the controller stays in Idle and remains
// usable for a later attempt.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fsm.MustState().(FSMState) != StateIdle {
		return ErrAlreadyRecording
	}

	stream, err := c.platform.OpenMicrophone(ctx, media.Constraints{
		EchoCancellation: c.cfg.EchoCancel,
		NoiseSuppression: c.cfg.NoiseSuppress,
		SampleRate:       c.cfg.SampleRate,
	})
	if err != nil {
		logger.L.Warn("microphone access failed", "error", err)
		return fmt.Errorf("open microphone: %w", err)
	}

	sess := &recordingSession{stream: stream}

	if c.platform.SupportsChunkRecorder() {
		if err := c.startPrimary(sess); err != nil {
			releaseStream(stream)
			return err
		}
	} else {
		if err := c.startFallback(sess); err != nil {
			releaseStream(stream)
			return err
		}
	}

	c.sess = sess
	if err := c.fsm.Fire(TriggerStart); err != nil {
		// Cannot happen given the Idle check above; release defensively.
		c.teardownLocked()
		return err
	}
	logger.L.Info("recording started", "strategy", sess.strategy, "mime_type", sess.mimeType)
	return nil
}

// startPrimary wires the native chunked recorder. A bounded time slice keeps
// memory flat on long recordings and wakes platforms that only emit data on
// a timer.
func (c *Controller) startPrimary(sess *recordingSession) error {
	mimeType := c.probeMIMEType()

	rec, err := c.platform.NewChunkRecorder(sess.stream, mimeType)
	if err != nil && mimeType != "" {
		// Some platforms report support yet throw on construction with an
		// explicit type; retry with the platform default.
		logger.L.Warn("recorder construction failed for probed type, retrying with default", "mime_type", mimeType, "error", err)
		mimeType = ""
		rec, err = c.platform.NewChunkRecorder(sess.stream, "")
	}
	if err != nil {
		return fmt.Errorf("create recorder: %w", err)
	}

	sess.strategy = StrategyPrimary
	sess.mimeType = mimeType
	sess.rec = rec

	return rec.Start(c.cfg.Timeslice, func(chunk []byte) {
		c.mu.Lock()
		defer c.mu.Unlock()
		// Chunks arriving after cancel belong to a discarded session.
		if c.sess != sess {
			return
		}
		if len(chunk) > 0 {
			// Copied for the same reason SampleBuffer.Push copies: the
			// platform may reuse the delivery buffer between callbacks.
			copied := make([]byte, len(chunk))
			copy(copied, chunk)
			sess.chunks = append(sess.chunks, copied)
		}
	})
}

// startFallback wires the manual sample-processing graph used on hosts
// without a native recorder.
func (c *Controller) startFallback(sess *recordingSession) error {
	proc, err := c.platform.NewSampleProcessor(sess.stream, c.cfg.ProcessorBuffer)
	if err != nil {
		return fmt.Errorf("create sample processor: %w", err)
	}

	sess.strategy = StrategyFallback
	sess.mimeType = audio.MIMEWAV
	sess.sampleRate = sess.stream.SampleRate()
	sess.samples = audio.NewSampleBuffer()
	sess.proc = proc

	return proc.Start(func(samples []float32) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.sess != sess {
			return
		}
		sess.samples.Push(samples)
	})
}

// probeMIMEType returns the first supported type from the preference list,
// or empty for the platform default.
func (c *Controller) probeMIMEType() string {
	for _, mt := range preferredMIMETypes {
		if c.platform.IsTypeSupported(mt) {
			return mt
		}
	}
	logger.L.Warn("no preferred MIME type supported, using platform default")
	return ""
}

// Stop ends the active session and emits the encoded clip through OnClip.
// A session that captured no data emits nothing.
func (c *Controller) Stop() error {
	c.mu.Lock()

	if c.fsm.MustState().(FSMState) != StateRecording {
		c.mu.Unlock()
		return ErrNotRecording
	}
	sess := c.sess
	if err := c.fsm.Fire(TriggerStop); err != nil {
		c.mu.Unlock()
		return err
	}

	if sess.strategy == StrategyPrimary {
		rec := sess.rec
		c.mu.Unlock()
		// The native recorder stops asynchronously; the final chunk lands
		// before done runs.
		err := rec.Stop(func(reportedType string) {
			c.finalizePrimary(sess, reportedType)
		})
		if err != nil {
			c.abortStop(sess, err)
		}
		return err
	}

	clip, ok := c.finalizeFallbackLocked(sess)
	c.mu.Unlock()
	c.emit(clip, ok)
	return nil
}

// abortStop recovers from a recorder whose stop failed outright. When done
// never ran the session is still live in Stopping; release the microphone,
// drop the buffers and return to Idle so the controller stays usable.
func (c *Controller) abortStop(sess *recordingSession, stopErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		// done ran after all; finalizePrimary already cleaned up.
		return
	}
	logger.L.Error("recorder stop failed, discarding session", "error", stopErr)
	releaseStream(sess.stream)
	sess.chunks = nil
	c.sess = nil
	if err := c.fsm.Fire(TriggerFinalize); err != nil {
		logger.L.Error("FSM finalize error", "error", err)
	}
}

// finalizePrimary concatenates the buffered fragments into one clip. The
// recorder's post-hoc reported type takes precedence over the preselected
// one.
func (c *Controller) finalizePrimary(sess *recordingSession, reportedType string) {
	c.mu.Lock()

	releaseStream(sess.stream)

	total := 0
	for _, chunk := range sess.chunks {
		total += len(chunk)
	}

	var clip Clip
	ok := false
	if total > 0 {
		data := make([]byte, 0, total)
		for _, chunk := range sess.chunks {
			data = append(data, chunk...)
		}
		mimeType := sess.mimeType
		if reportedType != "" {
			mimeType = reportedType
		}
		if mimeType == "" {
			mimeType = "audio/webm"
		}
		clip = Clip{Data: data, MIMEType: mimeType}
		ok = true
	} else {
		logger.L.Warn("recording stopped with no captured data")
	}

	c.sess = nil
	if err := c.fsm.Fire(TriggerFinalize); err != nil {
		logger.L.Error("FSM finalize error", "error", err)
	}
	c.mu.Unlock()

	c.emit(clip, ok)
}

// finalizeFallbackLocked quantizes the buffered float samples to 16-bit PCM
// and wraps them in a WAV container. Caller holds the mutex.
func (c *Controller) finalizeFallbackLocked(sess *recordingSession) (Clip, bool) {
	if err := sess.proc.Close(); err != nil {
		logger.L.Warn("processor close during stop", "error", err)
	}

	samples := sess.samples.Concat()
	sess.samples.Reset()

	var clip Clip
	ok := false
	if len(samples) > 0 {
		wav, err := audio.EncodeWAV(audio.QuantizePCM16(samples), sess.sampleRate)
		if err != nil {
			logger.L.Error("WAV encode failed", "error", err)
		} else {
			clip = Clip{Data: wav, MIMEType: audio.MIMEWAV}
			ok = true
		}
	} else {
		logger.L.Warn("recording stopped with no captured data")
	}

	releaseStream(sess.stream)

	c.sess = nil
	if err := c.fsm.Fire(TriggerFinalize); err != nil {
		logger.L.Error("FSM finalize error", "error", err)
	}
	return clip, ok
}

// Cancel discards all buffered data and returns to Idle without emitting
// anything.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fsm.MustState().(FSMState) != StateRecording {
		return ErrNotRecording
	}

	c.teardownLocked()
	if err := c.fsm.Fire(TriggerCancel); err != nil {
		return err
	}
	logger.L.Info("recording cancelled")
	return nil
}

// Toggle is the public start/stop affordance: it routes to Stop while a
// session is active, encoding the at-most-one-session rule.
func (c *Controller) Toggle(ctx context.Context) error {
	if c.Recording() {
		return c.Stop()
	}
	return c.Start(ctx)
}

// teardownLocked releases every media resource of the current session and
// drops its buffers. Caller holds the mutex.
func (c *Controller) teardownLocked() {
	sess := c.sess
	if sess == nil {
		return
	}
	c.sess = nil

	if sess.tickStop != nil {
		close(sess.tickStop)
		sess.tickStop = nil
	}
	if sess.rec != nil {
		if err := sess.rec.Stop(func(string) {}); err != nil {
			logger.L.Warn("recorder stop during teardown", "error", err)
		}
	}
	if sess.proc != nil {
		if err := sess.proc.Close(); err != nil {
			logger.L.Warn("processor close during teardown", "error", err)
		}
	}
	if sess.samples != nil {
		sess.samples.Reset()
	}
	sess.chunks = nil
	releaseStream(sess.stream)
}

func (c *Controller) emit(clip Clip, ok bool) {
	if ok && c.OnClip != nil {
		logger.L.Info("clip produced", "mime_type", clip.MIMEType, "bytes", len(clip.Data))
		c.OnClip(clip)
	}
}

func releaseStream(s media.Stream) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.L.Warn("failed to release microphone tracks", "error", err)
	}
}

// startTicker begins the 1-second elapsed counter. Runs on entry to
// Recording; the mutex is already held by the caller that fired the trigger.
func (c *Controller) startTicker() {
	sess := c.sess
	if sess == nil {
		return
	}
	stop := make(chan struct{})
	sess.tickStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		seconds := 0
		for {
			select {
			case <-ticker.C:
				seconds++
				c.mu.Lock()
				if c.sess != sess {
					c.mu.Unlock()
					return
				}
				sess.elapsedSeconds = seconds
				tick := c.OnTick
				c.mu.Unlock()
				if tick != nil {
					tick(seconds)
				}
			case <-stop:
				return
			}
		}
	}()
}

// stopTicker clears the elapsed counter on any exit from Recording.
func (c *Controller) stopTicker() {
	if c.sess != nil && c.sess.tickStop != nil {
		close(c.sess.tickStop)
		c.sess.tickStop = nil
	}
}

// FormatElapsed renders whole seconds as m:ss for the recording indicator.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// UserMessage maps a Start error to the alert text shown to the visitor.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrPermissionDenied):
		return "Microphone access was denied. Please allow microphone access in your browser settings and try again."
	case errors.Is(err, media.ErrDeviceNotFound):
		return "No microphone was found on this device."
	default:
		return "Voice recording could not be started. Please try again or type your message."
	}
}

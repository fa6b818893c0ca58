// Package media abstracts the host's capture APIs behind small interfaces so
// the capture controller can run against a native chunked recorder, a manual
// sample-processing graph, or test doubles. Implementations are expected to
// deliver callbacks from a single goroutine, mirroring the cooperative
// single-threaded model of the browsers this widget embeds into.
package media

import (
	"context"
	"errors"
	"time"
)

// Microphone acquisition failures, distinguished so the UI can give
// actionable guidance.
var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrDeviceNotFound   = errors.New("no microphone device found")
)

// Constraints requested when opening the microphone.
type Constraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	SampleRate       int
}

// Stream is an open microphone stream. Close releases every device track;
// it must be called on all exit paths from a recording.
type Stream interface {
	// SampleRate reports the rate the stream actually runs at, which may
	// differ from the requested one.
	SampleRate() int
	Close() error
}

// ChunkRecorder is the native chunked-recording API. Data arrives in encoded
// fragments on a bounded time slice so long recordings are flushed
// periodically instead of buffered whole.
type ChunkRecorder interface {
	// Start begins capture. onChunk is invoked for every flushed fragment,
	// including the final one emitted during stop.
	Start(timeslice time.Duration, onChunk func(chunk []byte)) error

	// Stop requests an asynchronous stop. done runs exactly once, after the
	// final chunk has been delivered, with the MIME type the recorder
	// actually produced. Platforms are known to silently substitute the
	// requested type, so this reported value wins over the preselected one.
	Stop(done func(mimeType string)) error
}

// SampleProcessor is the manual fallback: an audio graph that hands over
// fixed-size buffers of raw float samples on each processing callback.
type SampleProcessor interface {
	Start(onSamples func(samples []float32)) error
	// Close disconnects the graph and closes the audio context.
	Close() error
}

// Platform is the capture capability surface of the host.
type Platform interface {
	// OpenMicrophone requests microphone access. Fails with
	// ErrPermissionDenied or ErrDeviceNotFound when applicable.
	OpenMicrophone(ctx context.Context, c Constraints) (Stream, error)

	// SupportsChunkRecorder reports whether the native recorder API exists
	// on this host at all.
	SupportsChunkRecorder() bool

	// IsTypeSupported probes one MIME type against the native recorder.
	IsTypeSupported(mimeType string) bool

	// NewChunkRecorder constructs a native recorder on the stream.
	// mimeType may be empty to request the platform default; construction
	// with an explicit type may fail on platforms that misreport support.
	NewChunkRecorder(s Stream, mimeType string) (ChunkRecorder, error)

	// NewSampleProcessor opens a processing graph on the stream delivering
	// bufferSize samples per callback.
	NewSampleProcessor(s Stream, bufferSize int) (SampleProcessor, error)
}

package media

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// SimulatedPlatform synthesizes microphone input for the CLI and demos. It
// deliberately reports no native recorder so the fallback capture path gets
// exercised end to end.
type SimulatedPlatform struct {
	// Rate is the synthesized sample rate; 0 means 44100.
	Rate int
	// Denied simulates a visitor refusing the permission prompt.
	Denied bool
	// NoDevice simulates a host without any microphone.
	NoDevice bool
}

func (p *SimulatedPlatform) OpenMicrophone(_ context.Context, _ Constraints) (Stream, error) {
	if p.Denied {
		return nil, ErrPermissionDenied
	}
	if p.NoDevice {
		return nil, ErrDeviceNotFound
	}
	rate := p.Rate
	if rate == 0 {
		rate = 44100
	}
	return &simStream{rate: rate}, nil
}

func (p *SimulatedPlatform) SupportsChunkRecorder() bool { return false }

func (p *SimulatedPlatform) IsTypeSupported(string) bool { return false }

func (p *SimulatedPlatform) NewChunkRecorder(Stream, string) (ChunkRecorder, error) {
	return nil, fmt.Errorf("simulated platform has no chunked recorder")
}

func (p *SimulatedPlatform) NewSampleProcessor(s Stream, bufferSize int) (SampleProcessor, error) {
	return &simProcessor{rate: s.SampleRate(), bufferSize: bufferSize}, nil
}

type simStream struct {
	rate   int
	mu     sync.Mutex
	closed bool
}

func (s *simStream) SampleRate() int { return s.rate }

func (s *simStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// simProcessor emits buffers of a 440 Hz tone at the pace real capture
// would, so elapsed-time behavior and buffer accounting stay realistic.
type simProcessor struct {
	rate       int
	bufferSize int

	mu   sync.Mutex
	stop chan struct{}
}

func (p *simProcessor) Start(onSamples func([]float32)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return fmt.Errorf("processor already started")
	}
	stop := make(chan struct{})
	p.stop = stop

	interval := time.Duration(float64(p.bufferSize) / float64(p.rate) * float64(time.Second))
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		phase := 0
		for {
			select {
			case <-ticker.C:
				buf := make([]float32, p.bufferSize)
				for i := range buf {
					buf[i] = float32(0.3 * math.Sin(2*math.Pi*440*float64(phase+i)/float64(p.rate)))
				}
				phase += p.bufferSize
				onSamples(buf)
			case <-stop:
				return
			}
		}
	}()
	return nil
}

func (p *simProcessor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	return nil
}

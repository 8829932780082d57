// Package decode simulates a legacy hardware decoder: an asynchronous item
// source that delivers one frame per request through a completion callback.
//
// The decoder stands in for the kind of C-style driver API this module
// bridges. Requests are serviced by a single internal goroutine, so callbacks
// arrive asynchronously, in request order, and never reentrantly on the
// caller's stack.
package decode

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrDecoderClosed is returned when requesting frames from a closed decoder.
var ErrDecoderClosed = errors.New("decoder is closed")

// ErrDecodeFailed is the simulated hardware failure reported through the
// completion callback when fault injection is configured.
var ErrDecodeFailed = errors.New("decode failed")

// Frame is one decoded unit. Frames are handed off through the callback and
// owned by the receiver afterwards; the decoder keeps no reference.
type Frame struct {
	// Index is the zero-based decode sequence number.
	Index int32

	// Data is the simulated payload: four samples ramping from Index*4.
	Data []int32
}

// Callback receives the result of one decode request. It is invoked exactly
// once per request, on the decoder's service goroutine, with either a frame
// or an error.
type Callback func(Frame, error)

// Config holds configuration for the simulated decoder.
type Config struct {
	// Latency is the simulated per-frame decode time.
	Latency time.Duration

	// FailAfter makes requests beyond the first n fail with ErrDecodeFailed.
	// Zero disables fault injection.
	FailAfter int

	// QueueDepth is the pending request queue size. Defaults to 16.
	QueueDepth int

	// Logger receives decode tracing. Defaults to a disabled logger.
	Logger zerolog.Logger
}

// DefaultConfig returns a default decoder configuration.
func DefaultConfig() Config {
	return Config{
		Latency:    5 * time.Millisecond,
		QueueDepth: 16,
		Logger:     zerolog.Nop(),
	}
}

// Decoder is the simulated hardware decoder.
type Decoder struct {
	config   Config
	requests chan Callback
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

// New creates a decoder with default configuration.
func New() *Decoder {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a decoder with the specified configuration.
func NewWithConfig(config Config) *Decoder {
	if config.QueueDepth <= 0 {
		config.QueueDepth = DefaultConfig().QueueDepth
	}
	d := &Decoder{
		config:   config,
		requests: make(chan Callback, config.QueueDepth),
		done:     make(chan struct{}),
	}
	go d.serve()
	return d
}

// RequestNext queues one decode request. The callback is invoked exactly once,
// asynchronously, with the next frame or an error. Requests are serviced in
// order. Blocks only if the pending request queue is full.
func (d *Decoder) RequestNext(onFrame Callback) error {
	if onFrame == nil {
		return fmt.Errorf("decode request: callback cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDecoderClosed
	}
	d.requests <- onFrame
	return nil
}

// Close stops accepting requests and waits until every pending request has
// been answered. Idempotent.
func (d *Decoder) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return nil
	}
	d.closed = true
	close(d.requests)
	d.mu.Unlock()

	<-d.done
	return nil
}

// serve is the decoder's single service goroutine: one request at a time,
// monotonically increasing frame indices.
func (d *Decoder) serve() {
	defer close(d.done)

	var index int32
	served := 0
	for onFrame := range d.requests {
		if d.config.Latency > 0 {
			time.Sleep(d.config.Latency)
		}

		served++
		if d.config.FailAfter > 0 && served > d.config.FailAfter {
			d.config.Logger.Debug().Int("request", served).Msg("injected decode failure")
			onFrame(Frame{}, fmt.Errorf("%w: request %d", ErrDecodeFailed, served))
			continue
		}

		base := index * 4
		frame := Frame{
			Index: index,
			Data:  []int32{base, base + 1, base + 2, base + 3},
		}
		index++

		d.config.Logger.Debug().Int32("index", frame.Index).Msg("frame decoded")
		onFrame(frame, nil)
	}
}

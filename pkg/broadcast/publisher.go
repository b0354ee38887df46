package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/metrics"
	"github.com/dd0wney/discograph-layout/pkg/pools"
	"github.com/dd0wney/discograph-layout/pkg/pubsub"
)

// ErrClosed is returned by Publish after Close
var ErrClosed = errors.New("broadcast: publisher closed")

// Socket is the sending half of a PUB socket
type Socket interface {
	Send(msg []byte) error
	Close() error
}

// BufferPool supplies encode buffers. *pools.BytePool implements it.
type BufferPool interface {
	Get(size int) []byte
	Put(b []byte)
}

// Publisher encodes frames and sends them on a Socket
type Publisher struct {
	sock     Socket
	compress bool
	every    uint64
	metrics  *metrics.Registry
	logger   logging.Logger
	bufs     BufferPool

	mu       sync.Mutex
	closed   bool
	sent     uint64
	lastSize int
}

// Option configures a Publisher
type Option func(*Publisher)

// WithCompression toggles snappy compression of frames
func WithCompression(on bool) Option {
	return func(p *Publisher) { p.compress = on }
}

// WithEvery makes Run publish only every n-th tick
func WithEvery(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.every = uint64(n)
		}
	}
}

// WithMetrics records published frames on r
func WithMetrics(r *metrics.Registry) Option {
	return func(p *Publisher) { p.metrics = r }
}

// WithBufferPool replaces the default encode buffer pool
func WithBufferPool(bp BufferPool) Option {
	return func(p *Publisher) { p.bufs = bp }
}

// WithLogger sets the publisher's logger
func WithLogger(l logging.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// NewPublisher wraps an existing socket
func NewPublisher(sock Socket, opts ...Option) *Publisher {
	p := &Publisher{
		sock:     sock,
		compress: true,
		every:    1,
		logger:   logging.NewNopLogger(),
		bufs:     pools.DefaultBytePool(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logging.Component("broadcast"))
	return p
}

// Listen opens a mangos PUB socket bound to addr
func Listen(addr string, opts ...Option) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket: %w", err)
	}

	p := NewPublisher(sock, opts...)
	p.logger.Info("frame publisher bound", logging.String("address", addr))
	return p, nil
}

// Publish encodes and sends one frame
func (p *Publisher) Publish(f Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	// the socket copies the message, so the buffer can go back to the pool
	buf := p.bufs.Get(p.lastSize)
	msg, raw, err := AppendFrame(buf, f, p.compress)
	if err == nil {
		err = p.sock.Send(msg)
		p.lastSize = len(msg)
		buf = msg
	}
	if p.metrics != nil {
		p.metrics.RecordFrame(raw, max(len(msg)-1, 0), err)
	}
	p.bufs.Put(buf)
	if err != nil {
		p.logger.Warn("frame not published", logging.Tick(f.Tick), logging.Error(err))
		return err
	}
	p.sent++
	return nil
}

// Sent returns the number of frames published
func (p *Publisher) Sent() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// Run publishes tick events from sub until ctx is done or the subscription
// closes. Ticks are thinned to every n-th one; the final tick of a run is
// always sent.
func (p *Publisher) Run(ctx context.Context, ticks *pubsub.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ticks.Channel():
			if !ok {
				return nil
			}
			if ev.Tick%p.every != 0 && !ev.Final {
				continue
			}
			if err := p.Publish(FrameFromEvent(ev)); errors.Is(err, ErrClosed) {
				return err
			}
		}
	}
}

// Close closes the socket. Further Publish calls return ErrClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.sock.Close()
}

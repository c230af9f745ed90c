package chat

import (
	"sync"
	"sync/atomic"
	"time"

	"PolyChat/logger"

	"go.uber.org/zap"
)

// Transport is the wire side of one live connection. Writes are only ever
// issued from the client's write pump.
type Transport interface {
	WriteText(data []byte) error
	WritePing() error
	Close(code int, reason string) error
}

// Client represents one live connection (one device or tab) of an identity.
// A single identity may hold several clients, each maintained separately.
type Client struct {
	ID       string // unique within this process
	Identity string // fixed at handshake

	lang atomic.Value // string

	send      chan []byte // outbound frames, drained by WritePump only
	done      chan struct{}
	closeOnce sync.Once
	transport Transport

	disconnectOnce sync.Once // guards Hub.Disconnect

	dropped atomic.Int64
}

// NewClient creates a client with a bounded outbound queue.
func NewClient(id, identity string, t Transport, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 1
	}
	c := &Client{
		ID:        id,
		Identity:  identity,
		send:      make(chan []byte, sendQueueSize),
		done:      make(chan struct{}),
		transport: t,
	}
	c.lang.Store("")
	return c
}

func (c *Client) Lang() string { return c.lang.Load().(string) }

func (c *Client) SetLang(lang string) { c.lang.Store(lang) }

// Dropped is how many frames were discarded because the queue was full.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Done is closed once the client has been shut down.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks: a full queue drops the frame for this client only.
func (c *Client) enqueue(frame []byte) bool {
	if c.closed() {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// shutdown stops the write pump and closes the transport; safe to call many times.
func (c *Client) shutdown(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.transport != nil {
			if err := c.transport.Close(code, reason); err != nil {
				logger.Debug("transport close", zap.String("conn", c.ID), zap.Error(err))
			}
		}
	})
}

// WritePump drains the outbound queue in order and pings every pingPeriod.
// It returns when the client is shut down or a write fails.
func (c *Client) WritePump(pingPeriod time.Duration) error {
	if pingPeriod <= 0 {
		pingPeriod = 25 * time.Second
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return nil
		case frame := <-c.send:
			if err := c.transport.WriteText(frame); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.transport.WritePing(); err != nil {
				return err
			}
		}
	}
}

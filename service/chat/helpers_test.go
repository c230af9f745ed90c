package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu     sync.Mutex
	frames [][]byte
	pings  int
	closes int
	code   int
}

func (t *fakeTransport) WriteText(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, data)
	return nil
}

func (t *fakeTransport) WritePing() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pings++
	return nil
}

func (t *fakeTransport) Close(code int, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes++
	t.code = code
	return nil
}

var connSeq atomic.Int64

func newTestClient(identity string, queue int) *Client {
	return NewClient(fmt.Sprintf("c%d", connSeq.Add(1)), identity, &fakeTransport{}, queue)
}

// drain pops every frame queued on c without blocking.
func drain(t *testing.T, c *Client) []Frame {
	t.Helper()
	var out []Frame
	for {
		select {
		case b := <-c.send:
			var raw struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			require.NoError(t, json.Unmarshal(b, &raw))
			out = append(out, Frame{Event: raw.Event, Data: decodeEvent(t, raw.Event, raw.Data)})
		default:
			return out
		}
	}
}

func decodeEvent(t *testing.T, name string, data json.RawMessage) Event {
	t.Helper()
	switch name {
	case EvUserStatusChanged:
		var ev UserStatusChanged
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case EvMessageReceived:
		var ev MessageReceived
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case EvRoomLeft:
		var ev RoomLeft
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	default:
		var ev ContactDeleted
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	}
}

func statusEvents(frames []Frame, identity string) []string {
	var out []string
	for _, f := range frames {
		if ev, ok := f.Data.(UserStatusChanged); ok && ev.Username == identity {
			out = append(out, ev.Status)
		}
	}
	return out
}

package chat

import (
	"encoding/json"
	"sync"

	"PolyChat/tools/errs"

	"github.com/golang/glog"
)

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[h.Type()] = h
}

func (d *Dispatcher) GetHandler(event string) Handler {
	d.mu.RLock()
	h, ok := d.handlers[event]
	d.mu.RUnlock()
	if !ok {
		glog.Infof("no handler for event=%q", event)
		return nil
	}
	return h
}

// Dispatch parses raw as an Inbound frame and runs its handler.
func (d *Dispatcher) Dispatch(ctx *ChatContext, raw []byte) error {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return errs.ErrInvalidRequest.WrapMsg("unmarshal frame", "err", err)
	}
	h := d.GetHandler(in.Event)
	if h == nil {
		return errs.ErrInvalidAction.WrapMsg("no handler", "event", in.Event)
	}
	return h.Handle(ctx, in.Data)
}

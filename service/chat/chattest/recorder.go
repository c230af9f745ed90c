// Package chattest provides a recording chat.Notifier for module tests.
package chattest

import (
	"sync"

	"PolyChat/service/chat"
)

const (
	ToUser  = "user"
	ToGroup = "group"
	ToAll   = "all"
	Join    = "join"
	Leave   = "leave"
	Drop    = "drop"
)

// Call is one recorded notifier invocation. Identity is set for Join/Leave.
type Call struct {
	Kind     string
	Target   string
	Identity string
	Event    chat.Event
}

type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

var _ chat.Notifier = (*Recorder)(nil)

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) NotifyUser(identity string, ev chat.Event) int {
	r.add(Call{Kind: ToUser, Target: identity, Event: ev})
	return 1
}

func (r *Recorder) NotifyGroup(group string, ev chat.Event) int {
	r.add(Call{Kind: ToGroup, Target: group, Event: ev})
	return 1
}

func (r *Recorder) NotifyAll(ev chat.Event) int {
	r.add(Call{Kind: ToAll, Event: ev})
	return 1
}

func (r *Recorder) JoinRoom(identity, room string) {
	r.add(Call{Kind: Join, Target: room, Identity: identity})
}

func (r *Recorder) LeaveRoom(identity, room string) {
	r.add(Call{Kind: Leave, Target: room, Identity: identity})
}

func (r *Recorder) DropRoom(room string) {
	r.add(Call{Kind: Drop, Target: room})
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Events returns the events sent with kind to target, in order.
func (r *Recorder) Events(kind, target string) []chat.Event {
	var out []chat.Event
	for _, c := range r.Calls() {
		if c.Kind == kind && c.Target == target && c.Event != nil {
			out = append(out, c.Event)
		}
	}
	return out
}

// Has reports whether a membership call (Join, Leave, Drop) was recorded.
func (r *Recorder) Has(kind, target, identity string) bool {
	for _, c := range r.Calls() {
		if c.Kind == kind && c.Target == target && c.Identity == identity {
			return true
		}
	}
	return false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

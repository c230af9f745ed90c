package chat

import (
	"net/http"
	"time"

	"PolyChat/tools/ids"
	"PolyChat/tools/safe"

	"github.com/gorilla/websocket"
)

type ServerOptions struct {
	SendQueueSize int
	WriteWait     time.Duration
	PongWait      time.Duration
	PingPeriod    time.Duration
	MaxFrameBytes int64
	AllowOrigins  []string // empty allows any origin
}

func (o *ServerOptions) norm() {
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = 1 << 20
	}
}

// Server accepts websocket connections and hands them to the hub.
type Server struct {
	hub      *Hub
	resolver IdentityResolver
	rooms    RoomLookup
	disp     *Dispatcher
	opts     ServerOptions
	upgrader websocket.Upgrader
	newID    func() string
}

func NewServer(hub *Hub, resolver IdentityResolver, rooms RoomLookup, disp *Dispatcher, opts ServerOptions) *Server {
	safe.MustNotNil(hub, "hub")
	safe.MustNotNil(resolver, "resolver")
	opts.norm()
	if disp == nil {
		disp = NewDispatcher()
	}
	s := &Server{
		hub:      hub,
		resolver: resolver,
		rooms:    rooms,
		disp:     disp,
		opts:     opts,
		newID:    ids.GenerateString,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) Hub() *Hub         { return s.hub }
func (s *Server) Disp() *Dispatcher { return s.disp }

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range s.opts.AllowOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

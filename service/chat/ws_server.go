package chat

import (
	"context"
	"errors"
	"net"
	"time"

	"PolyChat/logger"
	"PolyChat/service/metrics"
	"PolyChat/tools/errs"
	"PolyChat/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sessionQuery  = "httpsid"
	sessionCookie = "sid"
)

// wsTransport adapts a gorilla connection. Control frames may be written
// concurrently with the write pump; data frames only come from the pump.
type wsTransport struct {
	conn      *websocket.Conn
	writeWait time.Duration
}

func (t *wsTransport) WriteText(data []byte) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) WritePing() error {
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.writeWait))
}

func (t *wsTransport) Close(code int, reason string) error {
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(t.writeWait))
	return t.conn.Close()
}

func sessionToken(c *gin.Context) string {
	if tok := c.Query(sessionQuery); tok != "" {
		return tok
	}
	if tok, err := c.Cookie(sessionCookie); err == nil {
		return tok
	}
	return ""
}

// HandleWS serves GET /ws. A connection whose session does not resolve is
// closed with 4001 and never registered.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	transport := &wsTransport{conn: ws, writeWait: s.opts.WriteWait}

	ctx := c.Request.Context()
	identity, err := s.resolver.Resolve(ctx, sessionToken(c))
	if err != nil {
		metrics.RejectedHandshakes.Inc()
		logger.Info("websocket rejected", zap.String("remote", c.ClientIP()), zap.String("code", errs.Reason(err)))
		_ = transport.Close(CloseInvalidSession, errs.ErrInvalidSession.Msg)
		return
	}

	client := NewClient(s.newID(), identity, transport, s.opts.SendQueueSize)
	if err := s.hub.Attach(ctx, client, s.rooms); err != nil {
		logger.Warn("load rooms at connect", zap.String("identity", identity), zap.Error(err))
	}
	defer s.hub.Disconnect(client)
	logger.Info("websocket accepted", zap.String("conn", client.ID), zap.String("identity", identity))

	safe.SafeGo(func() {
		if err := client.WritePump(s.opts.PingPeriod); err != nil {
			logger.Info("write pump stopped", zap.String("conn", client.ID), zap.Error(err))
		}
		s.hub.Disconnect(client)
	})

	s.readLoop(ctx, ws, client)
}

func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, client *Client) {
	ws.SetReadLimit(s.opts.MaxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	hctx := &ChatContext{Ctx: ctx, S: s, Client: client}
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			logReadErr(client, err)
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
		if mt != websocket.TextMessage {
			continue
		}
		if err := s.disp.Dispatch(hctx, data); err != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Info("inbound frame rejected",
				zap.String("conn", client.ID), zap.ByteString("sample", sample), zap.Error(err))
		}
	}
}

func logReadErr(client *Client, err error) {
	var ne net.Error
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		logger.Info("peer closed", zap.String("conn", client.ID), zap.String("identity", client.Identity))
	case errors.As(err, &ne) && ne.Timeout():
		logger.Info("read timeout", zap.String("conn", client.ID), zap.String("identity", client.Identity))
	default:
		logger.Debug("read error", zap.String("conn", client.ID), zap.Error(err))
	}
}

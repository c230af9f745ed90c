package handlers

import (
	"context"
	"encoding/json"

	"PolyChat/logger"
	"PolyChat/module/message/model"
	"PolyChat/module/message/service"
	"PolyChat/service/chat"
	"PolyChat/tools/decode"
	"PolyChat/tools/errs"

	"go.uber.org/zap"
)

const EvSendMessage = "sendMessage"

// Sender is the ingest entry point. *service.Service satisfies it.
type Sender interface {
	Send(ctx context.Context, req service.SendRequest) (*model.Message, error)
}

// SendMessageHandler lets a socket post a message as the identity it was
// authenticated with. The sender field of the frame is ignored.
type SendMessageHandler struct {
	svc Sender
}

func NewSendMessageHandler(svc Sender) chat.Handler { return &SendMessageHandler{svc: svc} }

func (h *SendMessageHandler) Type() string { return EvSendMessage }

func (h *SendMessageHandler) Handle(ctx *chat.ChatContext, data json.RawMessage) error {
	req, err := decode.DecodeRaw[service.SendRequest](data)
	if err != nil {
		return errs.ErrInvalidRequest.WrapMsg(err.Error())
	}
	req.Sender = ctx.Client.Identity
	msg, err := h.svc.Send(ctx.Ctx, *req)
	if err != nil {
		return err
	}
	logger.Debug("socket message accepted", zap.String("conn", ctx.Client.ID), zap.String("id", msg.ID))
	return nil
}

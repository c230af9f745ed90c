package handlers

import (
	"encoding/json"

	"PolyChat/logger"
	"PolyChat/service/chat"
	"PolyChat/service/translate"
	"PolyChat/tools/decode"
	"PolyChat/tools/errs"

	"go.uber.org/zap"
)

const EvSetLang = "setLang"

type setLangPayload struct {
	Lang string `json:"lang"`
}

// SetLangHandler sets the preferred language of the connection it arrives on.
type SetLangHandler struct{}

func NewSetLangHandler() chat.Handler { return &SetLangHandler{} }

func (h *SetLangHandler) Type() string { return EvSetLang }

func (h *SetLangHandler) Handle(ctx *chat.ChatContext, data json.RawMessage) error {
	p, err := decode.DecodeRaw[setLangPayload](data)
	if err != nil {
		return errs.ErrInvalidLangCode.WrapMsg(err.Error())
	}
	if p.Lang != "" && !translate.IsSupported(p.Lang) {
		return errs.ErrInvalidLangCode.WrapMsg("unsupported", "lang", p.Lang)
	}
	ctx.Client.SetLang(p.Lang)
	logger.Debug("connection language set", zap.String("conn", ctx.Client.ID), zap.String("lang", p.Lang))
	return nil
}

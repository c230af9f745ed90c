package service

import (
	"context"

	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
)

// StatusHook persists presence transitions on the user document.
type StatusHook struct {
	users usermodel.Users
}

func NewStatusHook(users usermodel.Users) *StatusHook {
	return &StatusHook{users: users}
}

func (h *StatusHook) OnTransition(ctx context.Context, t chat.Transition) error {
	return h.users.SetStatus(ctx, t.Identity, t.Status)
}

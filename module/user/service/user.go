package service

import (
	"context"
	"strings"
	"time"

	contactmodel "PolyChat/module/contact/model"
	usermodel "PolyChat/module/user/model"
	"PolyChat/service/chat"
	"PolyChat/tools"
	"PolyChat/tools/errs"
	"PolyChat/tools/security"
)

const (
	minUsername = 3
	minPassword = 6
	minQuery    = 3
	searchLimit = 50
	defaultLang = "en"
)

var (
	// interface languages, narrower than the translation set
	uiLangs  = map[string]bool{"de": true, "en": true, "pl": true}
	statuses = map[string]bool{"online": true, "offline": true, "away": true, "busy": true}
)

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Lang     string `json:"lang"`
}

// Session is a freshly issued session token.
type Session struct {
	SessionID string    `json:"sessionId"`
	ExpireAt  time.Time `json:"-"`
}

type Service struct {
	users    usermodel.Users
	contacts contactmodel.Store
	notifier chat.Notifier
	jwt      security.Options
}

func NewService(users usermodel.Users, contacts contactmodel.Store, notifier chat.Notifier, jwt security.Options) *Service {
	return &Service{users: users, contacts: contacts, notifier: notifier, jwt: jwt}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < minUsername {
		return nil, errs.ErrUsernameTooShort.Wrap()
	}
	if !tools.ValidName(username) {
		return nil, errs.ErrForbiddenCharacters.Wrap()
	}
	if _, err := s.users.Get(ctx, username); err == nil {
		return nil, errs.ErrUserAlreadyExists.Wrap()
	} else if !errs.ErrRecordNotFound.Is(err) {
		return nil, err
	}
	if len(req.Password) < minPassword {
		return nil, errs.ErrPasswordTooShort.Wrap()
	}
	if !uiLangs[req.Lang] {
		return nil, errs.ErrInvalidLangCode.Wrap()
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &usermodel.User{
		Username: username,
		Password: hash,
		Status:   chat.StatusOffline,
		Lang:     req.Lang,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.contacts.Create(ctx, username); err != nil {
		return nil, err
	}
	return s.issue(username)
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.Get(ctx, username)
	if errs.ErrRecordNotFound.Is(err) {
		return nil, errs.ErrUserNotFound.Wrap()
	}
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, errs.ErrPasswordFormat.Wrap()
	}
	if !security.CheckPassword(u.Password, password) {
		return nil, errs.ErrWrongPassword.Wrap()
	}
	return s.issue(u.Username)
}

func (s *Service) issue(username string) (*Session, error) {
	token, exp, err := security.Generate(s.jwt, username)
	if err != nil {
		return nil, err
	}
	return &Session{SessionID: token, ExpireAt: exp}, nil
}

// State is the caller's own profile.
func (s *Service) State(ctx context.Context, username string) (*chat.UserProfile, error) {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	if p.Lang == "" {
		p.Lang = defaultLang
	}
	return &p, nil
}

// SetStatus persists a manual status and tells every connection about it.
func (s *Service) SetStatus(ctx context.Context, username, status string) error {
	if !statuses[status] {
		return errs.ErrInvalidStatus.Wrap()
	}
	if err := s.users.SetStatus(ctx, username, status); err != nil {
		return err
	}
	s.notifier.NotifyAll(chat.UserStatusChanged{Username: username, Status: status})
	return nil
}

func (s *Service) SetAvatar(ctx context.Context, username, avatarID string) error {
	if strings.TrimSpace(avatarID) == "" {
		return errs.ErrInvalidRequest.WrapMsg("avatarID is required")
	}
	return s.users.SetAvatar(ctx, username, avatarID)
}

func (s *Service) SetLang(ctx context.Context, username, lang string) error {
	if !uiLangs[lang] {
		return errs.ErrInvalidLangCode.Wrap()
	}
	return s.users.SetLang(ctx, username, lang)
}

// Search finds users by name, excluding the caller.
func (s *Service) Search(ctx context.Context, me, query string) ([]chat.UserProfile, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQuery {
		return nil, errs.ErrQueryTooShort.Wrap()
	}
	if !tools.ValidName(query) {
		return nil, errs.ErrForbiddenCharacters.Wrap()
	}
	found, err := s.users.Search(ctx, query, searchLimit+1)
	if err != nil {
		return nil, err
	}
	out := make([]chat.UserProfile, 0, len(found))
	for _, u := range found {
		if u.Username == me {
			continue
		}
		out = append(out, u.Profile())
	}
	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	return out, nil
}

// Profiles loads public profiles in the order found.
func (s *Service) Profiles(ctx context.Context, usernames []string) ([]chat.UserProfile, error) {
	found, err := s.users.Find(ctx, usernames)
	if err != nil {
		return nil, err
	}
	out := make([]chat.UserProfile, 0, len(found))
	for _, u := range found {
		out = append(out, u.Profile())
	}
	return out, nil
}

package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"PolyChat/logger"
	"PolyChat/module/message/model"
	"PolyChat/service/bus"
	"PolyChat/service/chat"
	"PolyChat/service/metrics"
	"PolyChat/service/translate"
	"PolyChat/tools/errs"
	"PolyChat/tools/ids"

	"go.uber.org/zap"
)

const DefaultPageSize = 50

type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type Notifier interface {
	NotifyUser(identity string, ev chat.Event) int
	NotifyGroup(group string, ev chat.Event) int
}

// Describer resolves an uploaded attachment by file name.
type Describer interface {
	Describe(fileName string) (*chat.Attachment, error)
}

// SendRequest is one outbound message. Exactly one of Recipient and RoomID
// must be set. SourceLang defaults to auto.
type SendRequest struct {
	Sender     string `json:"-"`
	Content    string `json:"content"`
	FileName   string `json:"fileName"`
	Recipient  string `json:"recipient"`
	RoomID     string `json:"roomID"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type Page struct {
	Ended    bool             `json:"ended"`
	Messages []*model.Message `json:"messages"`
}

type AttachmentPage struct {
	Ended       bool               `json:"ended"`
	Attachments []*chat.Attachment `json:"attachments"`
}

type Service struct {
	store      model.Store
	translator Translator
	notifier   Notifier
	files      Describer
	pub        bus.Publisher
	gen        *ids.Generator
	pageSize   int
	now        func() time.Time
}

func NewService(store model.Store, translator Translator, notifier Notifier, files Describer,
	pub bus.Publisher, gen *ids.Generator, pageSize int) *Service {
	if pub == nil {
		pub = bus.Nop{}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		store:      store,
		translator: translator,
		notifier:   notifier,
		files:      files,
		pub:        pub,
		gen:        gen,
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// Send validates, optionally translates, persists and fans out one message.
// Nothing is persisted or delivered when an earlier step fails.
func (s *Service) Send(ctx context.Context, req SendRequest) (*model.Message, error) {
	msg, err := s.build(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		return nil, s.fail(err)
	}
	kind := s.fanout(msg)
	metrics.MessagesIngested.WithLabelValues(kind).Inc()
	s.publish(ctx, kind, msg)
	return msg, nil
}

func (s *Service) fail(err error) error {
	metrics.IngestFailures.WithLabelValues(errs.Reason(err)).Inc()
	if errs.KindOf(err) == errs.KindInternal || errs.KindOf(err) == errs.KindTranslation {
		logger.Warn("message ingest failed", zap.Error(err))
	}
	return err
}

func (s *Service) build(ctx context.Context, req SendRequest) (*model.Message, error) {
	if req.Sender == "" {
		return nil, errs.ErrSessionRequired.Wrap()
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && req.FileName == "" {
		return nil, errs.ErrMessageTooShort.Wrap()
	}
	if (req.Recipient == "") == (req.RoomID == "") {
		return nil, errs.ErrInvalidDestination.Wrap()
	}

	var (
		att *chat.Attachment
		err error
	)
	if req.FileName != "" {
		// attachment messages are never translated
		if att, err = s.files.Describe(req.FileName); err != nil {
			return nil, err
		}
	} else if content, err = s.rewrite(ctx, content, req.SourceLang, req.TargetLang); err != nil {
		return nil, err
	}

	seq := s.gen.Next()
	msg := &model.Message{
		ID:         strconv.FormatInt(seq, 10),
		Seq:        seq,
		Sender:     req.Sender,
		Date:       s.now(),
		Content:    content,
		Attachment: att,
	}
	if req.Recipient != "" {
		r := req.Recipient
		msg.Recipient = &r
	} else {
		r := req.RoomID
		msg.RoomID = &r
	}
	return msg, nil
}

// rewrite applies the "/xx text" command or an explicit target language.
func (s *Service) rewrite(ctx context.Context, content, source, target string) (string, error) {
	if lang, rest, ok := translate.ParseCommand(content); ok {
		return s.translate(ctx, rest, translate.Auto, lang)
	}
	if target == "" {
		return content, nil
	}
	if source == "" {
		source = translate.Auto
	}
	if source != translate.Auto && !translate.IsSupported(source) {
		return "", errs.ErrInvalidSourceLang.Wrap()
	}
	if !translate.IsSupported(target) {
		return "", errs.ErrInvalidTargetLang.Wrap()
	}
	return s.translate(ctx, content, source, target)
}

func (s *Service) translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := s.translator.Translate(ctx, text, source, target)
	if err == nil {
		return out, nil
	}
	switch errs.KindOf(err) {
	case errs.KindTranslation, errs.KindValidation:
		return "", err
	default:
		return "", errs.ErrTranslator.WrapMsg(err.Error())
	}
}

// fanout delivers a direct message to the recipient and echoes it to the
// sender's other connections; a room message goes to the room group once.
func (s *Service) fanout(msg *model.Message) string {
	ev := msg.Event()
	if msg.RoomID != nil {
		s.notifier.NotifyGroup(*msg.RoomID, ev)
		return bus.KindRoom
	}
	s.notifier.NotifyUser(*msg.Recipient, ev)
	if *msg.Recipient != msg.Sender {
		s.notifier.NotifyUser(msg.Sender, ev)
	}
	return bus.KindDirect
}

// ConversationKey is order independent so both directions share a partition.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (s *Service) publish(ctx context.Context, kind string, msg *model.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("encode bus event", zap.String("id", msg.ID), zap.Error(err))
		return
	}
	key := ""
	if msg.RoomID != nil {
		key = *msg.RoomID
	} else {
		key = ConversationKey(msg.Sender, *msg.Recipient)
	}
	if err := s.pub.Publish(ctx, bus.Event{Kind: kind, Key: key, ID: msg.ID, Payload: payload}); err != nil {
		logger.Warn("publish message event", zap.String("id", msg.ID), zap.String("kind", kind), zap.Error(err))
	}
}

// ParseBefore reads a message id cursor. Empty means the newest page.
func ParseBefore(messageID string) (int64, error) {
	if messageID == "" {
		return 0, nil
	}
	seq, err := strconv.ParseInt(messageID, 10, 64)
	if err != nil || seq <= 0 {
		return 0, errs.ErrInvalidMessageID.Wrap()
	}
	return seq, nil
}

// page fetches one record past the page size to learn whether more exist.
func (s *Service) page(ctx context.Context, q model.Query) ([]*model.Message, bool, error) {
	q.Limit = s.pageSize + 1
	msgs, err := s.store.List(ctx, q)
	if err != nil {
		return nil, false, err
	}
	ended := len(msgs) <= s.pageSize
	if !ended {
		msgs = msgs[:s.pageSize]
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return msgs, ended, nil
}

func (s *Service) Conversation(ctx context.Context, me, peer, before string) (*Page, error) {
	b, err := ParseBefore(before)
	if err != nil {
		return nil, err
	}
	msgs, ended, err := s.page(ctx, model.Query{Me: me, Peer: peer, Before: b})
	if err != nil {
		return nil, err
	}
	return &Page{Ended: ended, Messages: msgs}, nil
}

func (s *Service) Room(ctx context.Context, roomID, before string) (*Page, error) {
	b, err := ParseBefore(before)
	if err != nil {
		return nil, err
	}
	msgs, ended, err := s.page(ctx, model.Query{RoomID: roomID, Before: b})
	if err != nil {
		return nil, err
	}
	return &Page{Ended: ended, Messages: msgs}, nil
}

func (s *Service) ConversationAttachments(ctx context.Context, me, peer string) (*AttachmentPage, error) {
	return s.attachments(ctx, model.Query{Me: me, Peer: peer, AttachmentsOnly: true})
}

func (s *Service) RoomAttachments(ctx context.Context, roomID string) (*AttachmentPage, error) {
	return s.attachments(ctx, model.Query{RoomID: roomID, AttachmentsOnly: true})
}

func (s *Service) attachments(ctx context.Context, q model.Query) (*AttachmentPage, error) {
	msgs, ended, err := s.page(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]*chat.Attachment, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Attachment)
	}
	return &AttachmentPage{Ended: ended, Attachments: out}, nil
}

// LastFor is the newest message sent or received by me, nil if none.
func (s *Service) LastFor(ctx context.Context, me string) (*model.Message, error) {
	return s.store.LastFor(ctx, me)
}

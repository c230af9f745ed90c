package storage

import (
	"context"
	"errors"
	"time"

	"PolyChat/logger"
	"PolyChat/service/chat"
	"PolyChat/tools/errs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// presence key: im:presence:<user>, value: node id, TTL bounds staleness
// after a crash. im:online is the set of online users.
const onlineSetKey = "im:online"

func presenceKey(user string) string { return "im:presence:" + user }

// Only the node that owns the key may take the user offline.
// KEYS[1] = presence key, KEYS[2] = online set
// ARGV[1] = node id, ARGV[2] = user
// returns 1 when removed, 0 when owned by another node or absent
const luaOfflineIfOwner = `
local cur = redis.call("GET", KEYS[1])
if cur == ARGV[1] then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", KEYS[2], ARGV[2])
  return 1
end
return 0
`

var offlineIfOwner = redis.NewScript(luaOfflineIfOwner)

// PresenceMirror copies presence transitions into redis for readers
// outside this process. It is a chat.TransitionHook.
type PresenceMirror struct {
	rdb    redis.UniversalClient
	nodeID string
	ttl    time.Duration
}

func NewPresenceMirror(rdb redis.UniversalClient, nodeID string, ttl time.Duration) *PresenceMirror {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PresenceMirror{rdb: rdb, nodeID: nodeID, ttl: ttl}
}

func (m *PresenceMirror) OnTransition(ctx context.Context, t chat.Transition) error {
	switch t.Status {
	case chat.StatusOnline:
		return m.Online(ctx, t.Identity)
	case chat.StatusOffline:
		return m.Offline(ctx, t.Identity)
	default:
		return errs.New("unknown presence status", "status", t.Status)
	}
}

// Online sets the user online and renews the TTL.
func (m *PresenceMirror) Online(ctx context.Context, user string) error {
	_, err := m.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, presenceKey(user), m.nodeID, m.ttl)
		p.SAdd(ctx, onlineSetKey, user)
		return nil
	})
	return errs.WrapMsg(err, "presence online", "user", user)
}

func (m *PresenceMirror) Offline(ctx context.Context, user string) error {
	_, err := offlineIfOwner.Run(ctx, m.rdb, []string{presenceKey(user), onlineSetKey}, m.nodeID, user).Int()
	return errs.WrapMsg(err, "presence offline", "user", user)
}

// Lookup reports whether user is online and on which node.
func (m *PresenceMirror) Lookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	val, err := m.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(err)
	}
	return val, true, nil
}

// Refresh renews the TTL of every user in users.
func (m *PresenceMirror) Refresh(ctx context.Context, users []string) error {
	if len(users) == 0 {
		return nil
	}
	_, err := m.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, u := range users {
			p.Set(ctx, presenceKey(u), m.nodeID, m.ttl)
		}
		return nil
	})
	return errs.Wrap(err)
}

// Run refreshes the keys of locally online users at a third of the TTL.
func (m *PresenceMirror) Run(ctx context.Context, online func() []string) error {
	t := time.NewTicker(m.ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := m.Refresh(ctx, online()); err != nil {
				logger.Warn("presence refresh failed", zap.Error(err))
			}
		}
	}
}

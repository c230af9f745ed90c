package mgo

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/logger"
	"PolyChat/tools/errs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	baseBackoff = 200 * time.Millisecond
	maxBackoff  = 5 * time.Second
	failThresh  = 3
)

// Manager owns the Mongo client. The driver reconnects on its own, so after
// the first connect the manager only tracks health.
type Manager struct {
	cfg     *mongoutil.Config
	client  *mongoutil.Client
	healthy atomic.Bool
	lastErr atomic.Pointer[error]
	dial    func(ctx context.Context, cfg *mongoutil.Config) (*mongoutil.Client, error)
}

func NewManager(cfg *mongoutil.Config) *Manager {
	return &Manager{cfg: cfg, dial: mongoutil.NewMongoDB}
}

// Connect blocks until the first successful connect or ctx ends. An invalid
// config fails at once.
func (m *Manager) Connect(ctx context.Context) error {
	if err := m.cfg.ValidateAndSetDefaults(); err != nil {
		m.lastErr.Store(&err)
		return err
	}
	attempt := 0
	for {
		cli, err := m.dial(ctx, m.cfg)
		if err == nil {
			m.client = cli
			m.healthy.Store(true)
			logger.Info("mongo connected", zap.String("database", m.cfg.Database))
			return nil
		}
		m.lastErr.Store(&err)
		logger.Warn("mongo connect failed", zap.Int("attempt", attempt), zap.Error(err))

		timer := time.NewTimer(backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errs.Wrap(ctx.Err())
		case <-timer.C:
		}
		if attempt < 6 {
			attempt++
		}
	}
}

func backoff(attempt int) time.Duration {
	d := baseBackoff << attempt
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d / 5)))
	return d - jitter/2
}

func (m *Manager) DB() *mongo.Database {
	if m.client == nil {
		panic("mongo not connected: call Connect first")
	}
	return m.client.GetDB()
}

// Run pings every interval until ctx ends, then disconnects.
func (m *Manager) Run(ctx context.Context, every time.Duration) error {
	if m.client == nil {
		return errs.New("mongo not connected")
	}
	t := time.NewTicker(every)
	defer t.Stop()
	fail := 0
	for {
		select {
		case <-ctx.Done():
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return m.client.Close(cctx)
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, every)
			err := m.client.Ping(pctx)
			cancel()
			if err == nil {
				if fail >= failThresh {
					logger.Info("mongo healthy again")
				}
				fail = 0
				m.healthy.Store(true)
				continue
			}
			fail++
			m.lastErr.Store(&err)
			if fail == failThresh {
				m.healthy.Store(false)
				logger.Error("mongo unhealthy", zap.Int("failures", fail), zap.Error(err))
			}
		}
	}
}

func (m *Manager) Healthy() bool { return m.healthy.Load() }

// Err returns the most recent connect or ping error.
func (m *Manager) Err() error {
	if p := m.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/global/config"
	"PolyChat/logger"
	"PolyChat/middleware"
	"PolyChat/middleware/security"
	"PolyChat/module/contact"
	contactmodel "PolyChat/module/contact/model"
	contactservice "PolyChat/module/contact/service"
	"PolyChat/module/invitation"
	invmodel "PolyChat/module/invitation/model"
	invservice "PolyChat/module/invitation/service"
	"PolyChat/module/message"
	msgmodel "PolyChat/module/message/model"
	msgservice "PolyChat/module/message/service"
	"PolyChat/module/room"
	roommodel "PolyChat/module/room/model"
	roomservice "PolyChat/module/room/service"
	"PolyChat/module/upload"
	"PolyChat/module/user"
	usermodel "PolyChat/module/user/model"
	userservice "PolyChat/module/user/service"
	"PolyChat/service/bus"
	"PolyChat/service/chat"
	"PolyChat/service/chat/handlers"
	"PolyChat/service/kafka"
	"PolyChat/service/mgo"
	"PolyChat/service/natsx"
	"PolyChat/service/session"
	"PolyChat/service/storage"
	redisx "PolyChat/service/storage/redis"
	"PolyChat/service/translate"
	"PolyChat/tools/errs"
	"PolyChat/tools/ids"
	jwtsec "PolyChat/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// stores bundles every persistence port. They are either all Mongo backed
// or all in memory.
type stores struct {
	users        usermodel.Users
	contacts     contactmodel.Store
	rooms        roommodel.Rooms
	joinRequests roommodel.JoinRequests
	invitations  invmodel.Store
	messages     msgmodel.Store
}

func memStores() stores {
	return stores{
		users:        usermodel.NewMemUsers(),
		contacts:     contactmodel.NewMemStore(),
		rooms:        roommodel.NewMemRooms(),
		joinRequests: roommodel.NewMemJoinRequests(),
		invitations:  invmodel.NewMemStore(),
		messages:     msgmodel.NewMemStore(),
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func mongoStores(ctx context.Context, m *mgo.Manager) (stores, error) {
	db := m.DB()
	users := usermodel.NewMongoUsers(db)
	contacts := contactmodel.NewMongoStore(db)
	rooms := roommodel.NewMongoRooms(db)
	messages := msgmodel.NewMongoStore(db)
	for _, ix := range []indexer{users, contacts, rooms, messages} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return stores{}, err
		}
	}
	return stores{
		users:        users,
		contacts:     contacts,
		rooms:        rooms,
		joinRequests: roommodel.NewMongoJoinRequests(db),
		invitations:  invmodel.NewMongoStore(db),
		messages:     messages,
	}, nil
}

// App is one running chat node.
type App struct {
	cfg    config.AppConfig
	mongo  *mgo.Manager
	mirror *storage.PresenceMirror
	rdb    *redis.Client
	pub    bus.Publisher
	hub    *chat.Hub
	cache  *session.Cache
	engine *gin.Engine
}

func newPublisher(c config.BusConfig) (bus.Publisher, error) {
	switch c.Kind {
	case config.BusNats:
		return natsx.NewNatsManager(natsx.NatsxConfig{
			Servers:       c.Servers,
			Name:          c.Name,
			User:          c.User,
			Pass:          c.Pass,
			ReconnectWait: 2 * time.Second,
			Timeout:       5 * time.Second,
		}, c.Subject, natsx.JetStreamPush)
	case config.BusKafka:
		kc := kafka.DefaultConfig()
		kc.Brokers = c.Servers
		kc.Topic = c.Subject
		return kafka.Dial(kc)
	default:
		return bus.Nop{}, nil
	}
}

// NewApp connects the backing services and assembles the HTTP surface.
func NewApp(ctx context.Context, cfg config.AppConfig, inMemory bool) (*App, error) {
	a := &App{cfg: cfg}

	var st stores
	if inMemory {
		logger.Warn("using in-memory stores, data is lost on restart")
		st = memStores()
	} else {
		a.mongo = mgo.NewManager(&mongoutil.Config{
			Uri:         cfg.Mongo.Uri,
			Database:    cfg.Mongo.Database,
			Username:    cfg.Mongo.Username,
			Password:    cfg.Mongo.Password,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
			MaxRetry:    cfg.Mongo.MaxRetry,
		})
		if err := a.mongo.Connect(ctx); err != nil {
			return nil, err
		}
		var err error
		if st, err = mongoStores(ctx, a.mongo); err != nil {
			return nil, err
		}
	}

	hooks := []chat.TransitionHook{userservice.NewStatusHook(st.users)}
	if cfg.Redis.Addr != "" {
		rdb, err := redisx.NewClient(ctx, redisx.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		a.mirror = storage.NewPresenceMirror(rdb, strconv.FormatInt(cfg.NodeID, 10), cfg.Redis.PresenceTTL)
		hooks = append(hooks, a.mirror)
	}

	pub, err := newPublisher(cfg.Bus)
	if err != nil {
		return nil, err
	}
	a.pub = pub

	a.hub = chat.NewHub(chat.HubOptions{
		Shards:    cfg.Hub.RegistryShards,
		HookQueue: cfg.Hub.HookQueueSize,
		Hooks:     hooks,
	})

	jwtOpts := jwtsec.DefaultOptions([]byte(cfg.JwtSecret))
	jwtOpts.TTL = cfg.JwtTTL
	a.cache = session.NewCache(jwtsec.NewJWTVerifier(jwtOpts))

	attachments, err := upload.NewStore(cfg.Upload.AttachmentDir, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, err
	}
	avatars, err := upload.NewStore(cfg.Upload.AvatarDir, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, err
	}

	users := userservice.NewService(st.users, st.contacts, a.hub, jwtOpts)
	contacts := contactservice.NewService(st.contacts, st.users, st.rooms, a.hub)
	rooms := roomservice.NewService(st.rooms, st.joinRequests, st.contacts, st.users, a.hub)
	invitations := invservice.NewService(st.invitations, st.users, st.contacts, st.rooms, rooms, a.hub)
	messages := msgservice.NewService(st.messages,
		translate.NewDeepL(cfg.Translate.Endpoint, cfg.Translate.AuthKey, cfg.Translate.Timeout),
		a.hub, attachments, a.pub, ids.NewGenerator(cfg.NodeID), cfg.HistoryPage)

	disp := chat.NewDispatcher()
	disp.Register(handlers.NewSetLangHandler())
	disp.Register(handlers.NewSendMessageHandler(messages))
	ws := chat.NewServer(a.hub, a.cache, st.contacts, disp, chat.ServerOptions{
		SendQueueSize: cfg.Hub.SendQueueSize,
		WriteWait:     cfg.Hub.WriteWait,
		PongWait:      cfg.Hub.PongWait,
		PingPeriod:    cfg.Hub.PingPeriod,
		MaxFrameBytes: cfg.Hub.MaxFrameBytes,
		AllowOrigins:  cfg.AllowOrigins,
	})

	middleware.UseAuth(security.Middleware(a.cache, nil))
	middleware.Manager().Add(middleware.Origin(cfg.AllowOrigins))

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Manager().Use())
	r.GET("/ws", ws.HandleWS)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", a.health)

	user.NewHandler(users, a.cache).Register(r)
	contact.NewHandler(contacts).Register(r)
	room.NewHandler(rooms).Register(r)
	invitation.NewHandler(invitations).Register(r)
	message.NewHandler(messages).Register(r)
	upload.NewHandler(attachments, avatars).Register(r)
	a.engine = r
	return a, nil
}

func (a *App) health(c *gin.Context) {
	if a.mongo != nil && !a.mongo.Healthy() {
		reason := "mongo unhealthy"
		if err := a.mongo.Err(); err != nil {
			reason = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "reason": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "up",
		"online":      a.hub.Registry.Identities(),
		"connections": a.hub.Registry.Len(),
	})
}

// Run serves until ctx ends and then shuts every component down.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{Addr: a.cfg.HttpAddr, Handler: a.engine}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.hub.Run(gctx) })
	g.Go(func() error { return a.cache.Run(gctx, a.cfg.CacheSweep) })
	if a.mongo != nil {
		g.Go(func() error { return a.mongo.Run(gctx, 10*time.Second) })
	}
	if a.mirror != nil {
		g.Go(func() error { return a.mirror.Run(gctx, a.hub.Registry.OnlineIdentities) })
	}
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", a.cfg.HttpAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errs.WrapMsg(err, "http serve", "addr", a.cfg.HttpAddr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err := g.Wait()
	if cerr := a.pub.Close(); cerr != nil {
		logger.Warn("close bus publisher", zap.Error(cerr))
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return err
}

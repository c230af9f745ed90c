package config

import (
	"os"
	"strings"
	"time"

	"PolyChat/tools"
	"PolyChat/tools/errs"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BusNone  = "none"
	BusNats  = "nats"
	BusKafka = "kafka"
)

type MongoConfig struct {
	Uri         string `yaml:"uri"`
	Database    string `yaml:"database"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	MaxPoolSize int    `yaml:"max_pool_size"`
	MaxRetry    int    `yaml:"max_retry"`
}

// RedisConfig: an empty Addr disables the presence mirror.
type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	PresenceTTL time.Duration `yaml:"presence_ttl"`
}

type BusConfig struct {
	Kind    string   `yaml:"kind"` // none | nats | kafka
	Servers []string `yaml:"servers"`
	Name    string   `yaml:"name"`
	Subject string   `yaml:"subject"` // nats subject prefix / kafka topic
	User    string   `yaml:"user"`
	Pass    string   `yaml:"pass"`
}

type TranslateConfig struct {
	Endpoint string        `yaml:"endpoint"`
	AuthKey  string        `yaml:"auth_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type HubConfig struct {
	SendQueueSize  int           `yaml:"send_queue_size"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	PingPeriod     time.Duration `yaml:"ping_period"`
	MaxFrameBytes  int64         `yaml:"max_frame_bytes"`
	RegistryShards int           `yaml:"registry_shards"`
	HookQueueSize  int           `yaml:"hook_queue_size"`
}

type UploadConfig struct {
	AttachmentDir string `yaml:"attachment_dir"`
	AvatarDir     string `yaml:"avatar_dir"`
	MaxBytes      int64  `yaml:"max_bytes"`
}

type AppConfig struct {
	HttpAddr     string          `yaml:"http_addr"`
	InMemory     bool            `yaml:"in_memory"`
	LogLevel     string          `yaml:"log_level"`
	NodeID       int64           `yaml:"node_id"`
	JwtSecret    string          `yaml:"jwt_secret"`
	JwtTTL       time.Duration   `yaml:"jwt_ttl"`
	CacheSweep   time.Duration   `yaml:"cache_sweep"`
	HistoryPage  int             `yaml:"history_page"`
	AllowOrigins []string        `yaml:"allow_origins"`
	Mongo        MongoConfig     `yaml:"mongo"`
	Redis        RedisConfig     `yaml:"redis"`
	Bus          BusConfig       `yaml:"bus"`
	Translate    TranslateConfig `yaml:"translate"`
	Hub          HubConfig       `yaml:"hub"`
	Upload       UploadConfig    `yaml:"upload"`
}

func Default() AppConfig {
	return AppConfig{
		HttpAddr:    ":3001",
		LogLevel:    "info",
		NodeID:      1,
		JwtTTL:      31 * 24 * time.Hour,
		CacheSweep:  time.Minute,
		HistoryPage: 50,
		Mongo: MongoConfig{
			Uri:         "mongodb://localhost:27017",
			Database:    "chat",
			MaxPoolSize: 20,
			MaxRetry:    3,
		},
		Redis: RedisConfig{PresenceTTL: 2 * time.Minute},
		Bus:   BusConfig{Kind: BusNone, Name: "polychat", Subject: "chat.message"},
		Translate: TranslateConfig{
			Endpoint: "https://api-free.deepl.com/v2/translate",
			Timeout:  10 * time.Second,
		},
		Hub: HubConfig{
			SendQueueSize:  256,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     25 * time.Second,
			MaxFrameBytes:  1 << 20,
			RegistryShards: 32,
			HookQueueSize:  1024,
		},
		Upload: UploadConfig{
			AttachmentDir: "public/attachments",
			AvatarDir:     "public/avatars",
			MaxBytes:      10 << 20,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence (environment wins).
func Load(path string) (AppConfig, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errs.WrapMsg(err, "read config file", "path", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errs.WrapMsg(err, "parse config file", "path", path)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(c *AppConfig) {
	c.HttpAddr = tools.GetEnv("HTTP_ADDR", c.HttpAddr)
	c.LogLevel = tools.GetEnv("LOG_LEVEL", c.LogLevel)
	c.InMemory = tools.GetEnvBool("IN_MEMORY", c.InMemory)
	c.NodeID = int64(tools.GetEnvInt("NODE_ID", int(c.NodeID)))
	c.JwtSecret = tools.GetEnv("JWT_SECRET", c.JwtSecret)
	c.JwtTTL = tools.GetEnvDuration("JWT_TTL", c.JwtTTL)
	c.HistoryPage = tools.GetEnvInt("HISTORY_PAGE", c.HistoryPage)
	if v := tools.GetEnv("ALLOW_ORIGINS", ""); v != "" {
		c.AllowOrigins = splitList(v)
	}

	c.Mongo.Uri = tools.GetEnv("MONGO_URI", c.Mongo.Uri)
	c.Mongo.Database = tools.GetEnv("MONGO_DATABASE", c.Mongo.Database)
	c.Mongo.Username = tools.GetEnv("MONGO_USERNAME", c.Mongo.Username)
	c.Mongo.Password = tools.GetEnv("MONGO_PASSWORD", c.Mongo.Password)

	c.Redis.Addr = tools.GetEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = tools.GetEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = tools.GetEnvInt("REDIS_DB", c.Redis.DB)

	c.Bus.Kind = strings.ToLower(tools.GetEnv("BUS_KIND", c.Bus.Kind))
	if v := tools.GetEnv("BUS_SERVERS", ""); v != "" {
		c.Bus.Servers = splitList(v)
	}
	c.Bus.Subject = tools.GetEnv("BUS_SUBJECT", c.Bus.Subject)
	c.Bus.User = tools.GetEnv("BUS_USER", c.Bus.User)
	c.Bus.Pass = tools.GetEnv("BUS_PASS", c.Bus.Pass)

	c.Translate.Endpoint = tools.GetEnv("DEEPL_ENDPOINT", c.Translate.Endpoint)
	c.Translate.AuthKey = tools.GetEnv("DEEPL_AUTH_KEY", c.Translate.AuthKey)

	c.Hub.SendQueueSize = tools.GetEnvInt("HUB_SEND_QUEUE", c.Hub.SendQueueSize)

	c.Upload.AttachmentDir = tools.GetEnv("ATTACHMENT_DIR", c.Upload.AttachmentDir)
	c.Upload.AvatarDir = tools.GetEnv("AVATAR_DIR", c.Upload.AvatarDir)
}

func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.JwtSecret) == "" {
		return errs.New("jwt secret is required")
	}
	if c.Hub.SendQueueSize <= 0 {
		return errs.New("hub send queue size must be positive", "size", c.Hub.SendQueueSize)
	}
	switch c.Bus.Kind {
	case BusNone, BusNats, BusKafka:
	default:
		return errs.New("unknown bus kind", "kind", c.Bus.Kind)
	}
	if c.Bus.Kind != BusNone && len(c.Bus.Servers) == 0 {
		return errs.New("bus servers are required", "kind", c.Bus.Kind)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

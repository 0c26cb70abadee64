package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/util"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	CORSPattern  string `env:"CORS_PATTERN" envDefault:"^https?://localhost(:[0-9]+)?$"`
	PprofEnabled bool   `env:"PPROF_ENABLED" envDefault:"false"`
}

type CatalogConfig struct {
	RESTBaseURL string        `env:"REST_BASE_URL" envDefault:"http://localhost:8081/api"`
	GraphQLURL  string        `env:"GRAPHQL_URL" envDefault:"http://localhost:8081/graphql"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"10s"`
	// RetryCount applies to transient socket-level failures only.
	RetryCount int `env:"RETRY_COUNT" envDefault:"0"`
	// TransportPolicy is one of "auto" or "rest".
	TransportPolicy string `env:"TRANSPORT_POLICY" envDefault:"auto"`
	// Profile selects the default page size: "browse" (12) or "admin" (10).
	Profile          string        `env:"PROFILE" envDefault:"browse"`
	CancelSuperseded bool          `env:"CANCEL_SUPERSEDED" envDefault:"false"`
	CategoryTTL      time.Duration `env:"CATEGORY_TTL" envDefault:"5m"`
}

type AuthConfig struct {
	BearerToken string `env:"BEARER_TOKEN"`
}

type DatabaseConfig struct {
	Enabled  bool     `env:"ENABLED" envDefault:"false"`
	Hosts    []string `env:"HOSTS" envDefault:"localhost:27017"`
	Direct   bool     `env:"DIRECT" envDefault:"false"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Database string   `env:"DATABASE" envDefault:"catalog_browser"`
}

type KafkaConfig struct {
	Enabled  bool     `env:"ENABLED" envDefault:"false"`
	Brokers  []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic    string   `env:"TOPIC" envDefault:"catalog.browse-activity"`
	ClientID string   `env:"CLIENT_ID" envDefault:"catalog-browser"`
}

type LogConfig struct {
	Level    string `env:"LEVEL" envDefault:"info"`
	Encoding string `env:"ENCODING" envDefault:"json"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if !util.SliceIncludes([]string{"auto", "rest"}, cfg.Catalog.TransportPolicy) {
		return nil, fmt.Errorf("unknown transport policy %q", cfg.Catalog.TransportPolicy)
	}
	if !util.SliceIncludes([]string{"browse", "admin"}, cfg.Catalog.Profile) {
		return nil, fmt.Errorf("unknown catalog profile %q", cfg.Catalog.Profile)
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

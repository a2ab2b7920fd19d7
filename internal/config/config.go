package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const DefaultPath = "./config/config.yaml"

// Path is the location of the YAML config file. main provides it from the
// -config flag.
type Path string

type Config struct {
	Server  Server  `yaml:"server"`
	Backend Backend `yaml:"backend"`
	Storage Storage `yaml:"storage"`
	Guard   Guard   `yaml:"guard"`
	Routes  []Route `yaml:"routes"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Port int `yaml:"port" env:"AUTHGATE_PORT, overwrite"`
}

type Backend struct {
	URL     string        `yaml:"url" env:"AUTHGATE_BACKEND_URL, overwrite"`
	Timeout time.Duration `yaml:"timeout" env:"AUTHGATE_BACKEND_TIMEOUT, overwrite"`
}

type Storage struct {
	// Driver is one of file, memory or redis.
	Driver string `yaml:"driver" env:"AUTHGATE_STORAGE_DRIVER, overwrite"`
	Path   string `yaml:"path" env:"AUTHGATE_STORAGE_PATH, overwrite"`
	Redis  Redis  `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"AUTHGATE_REDIS_ADDR, overwrite"`
	Password string `yaml:"password" env:"AUTHGATE_REDIS_PASSWORD, overwrite"`
	DB       int    `yaml:"db" env:"AUTHGATE_REDIS_DB, overwrite"`
	Prefix   string `yaml:"prefix" env:"AUTHGATE_REDIS_PREFIX, overwrite"`
}

type Guard struct {
	LoginPath   string `yaml:"loginPath"`
	DefaultPath string `yaml:"defaultPath"`
	// PermitMissingRole lets a session without a role claim through routes
	// that declare allowed roles.
	PermitMissingRole bool `yaml:"permitMissingRole" env:"AUTHGATE_PERMIT_MISSING_ROLE, overwrite"`
}

// Route is a protected view. An empty AllowedRoles admits any logged in
// session.
type Route struct {
	Path         string   `yaml:"path"`
	Title        string   `yaml:"title"`
	AllowedRoles []string `yaml:"allowedRoles"`
}

type Log struct {
	Development bool   `yaml:"development" env:"AUTHGATE_LOG_DEVELOPMENT, overwrite"`
	File        string `yaml:"file" env:"AUTHGATE_LOG_FILE, overwrite"`
	MaxSizeMB   int    `yaml:"maxSizeMB"`
	MaxBackups  int    `yaml:"maxBackups"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Port: 8123,
		},
		Backend: Backend{
			URL:     "http://127.0.0.1:8000/api/auth",
			Timeout: 10 * time.Second,
		},
		Storage: Storage{
			Driver: "file",
			Path:   "data/storage.json",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "authgate:",
			},
		},
		Guard: Guard{
			LoginPath:         "/login",
			DefaultPath:       "/dashboard",
			PermitMissingRole: true,
		},
		Routes: []Route{
			{Path: "/dashboard", Title: "Dashboard"},
			{Path: "/admin-dashboard", Title: "Admin dashboard", AllowedRoles: []string{"admin"}},
			{Path: "/roles", Title: "Role management", AllowedRoles: []string{"admin"}},
		},
		Log: Log{
			Development: true,
			MaxSizeMB:   10,
			MaxBackups:  3,
		},
	}
}

// New loads the config file over the defaults, then applies environment
// overrides. A missing file is not an error.
func New(path Path) (*Config, error) {
	cfg := Default()

	if err := loadFile(string(path), cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

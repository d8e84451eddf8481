package appconfig

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type AppConfig struct {
	Port         string        `env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	DatabaseURL  string        `env:"DATABASE_URL" env-description:"Postgres DSN for the export archive; empty disables it"`
	AutoMigrate  bool          `env:"AUTO_MIGRATE" env-default:"false"`
	ExportFile   string        `env:"EXPORT_FILE" env-description:"export to load at startup"`
	WatchExport  bool          `env:"WATCH_EXPORT" env-default:"true" env-description:"re-import EXPORT_FILE when it changes"`
	LogFormat    string        `env:"LOG_FORMAT" env-default:"text" env-description:"text or json"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" env-default:"30s"`
	MaxImportMB  int64         `env:"MAX_IMPORT_MB" env-default:"256"`
}

// Load environment variables to AppConfig instance
func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c *AppConfig) Addr() string { return ":" + c.Port }

// MaxImportBytes caps an uploaded payload.
func (c *AppConfig) MaxImportBytes() int64 { return c.MaxImportMB << 20 }

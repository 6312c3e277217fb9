package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig   `json:"server"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
	Database DatabaseConfig `json:"database"`
	Workflow WorkflowConfig `json:"workflow"`
	Upload   UploadConfig   `json:"upload"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type SecurityConfig struct {
	CookieSecret      string        `json:"cookie_secret"`
	SessionTimeout    time.Duration `json:"session_timeout"`
	PasswordMinLength int           `json:"password_min_length"`
	PasswordMaxLength int           `json:"password_max_length"`
}

type LoggingConfig struct {
	Environment string `json:"environment"`
	Level       string `json:"level"`
	Format      string `json:"format"`
}

type DatabaseConfig struct {
	Host            string `json:"host"`
	Port            string `json:"port"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	SSLMode         string `json:"ssl_mode"`
	MaxIdleConns    int    `json:"max_idle_conns"`
	MaxOpenConns    int    `json:"max_open_conns"`
	ConnMaxLifetime int    `json:"conn_max_lifetime"`
}

// WorkflowConfig carries the reviewer chains used when a document type has no
// admin-configured template yet.
type WorkflowConfig struct {
	DefaultPaths map[string][]string `json:"default_paths"`
}

type UploadConfig struct {
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

var (
	config     *Configuration
	configOnce sync.Once
	configLock sync.RWMutex
)

func LoadConfig(filePath string) (*Configuration, error) {
	var err error

	configOnce.Do(func() {
		var file *os.File
		file, err = os.Open(filePath)
		if err != nil {
			err = fmt.Errorf("failed to open config file: %w", err)
			return
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		config = &Configuration{}
		err = decoder.Decode(config)
		if err != nil {
			err = fmt.Errorf("failed to decode config file: %w", err)
			return
		}

		applyDefaults(config)
	})

	return config, err
}

func GetConfig() *Configuration {
	configLock.RLock()
	defer configLock.RUnlock()
	return config
}

func InitializeDefaultConfig() *Configuration {
	configLock.Lock()
	defer configLock.Unlock()

	config = &Configuration{}
	applyDefaults(config)
	return config
}

func applyDefaults(c *Configuration) {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}

	if c.Security.CookieSecret == "" {
		c.Security.CookieSecret = "docuverify-secret-key"
	}
	if c.Security.SessionTimeout == 0 {
		c.Security.SessionTimeout = 24 * time.Hour
	}
	if c.Security.PasswordMinLength == 0 {
		c.Security.PasswordMinLength = 8
	}
	if c.Security.PasswordMaxLength == 0 {
		c.Security.PasswordMaxLength = 64
	}

	if c.Logging.Environment == "" {
		c.Logging.Environment = "development"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.Username == "" {
		c.Database.Username = "postgres"
	}
	if c.Database.Password == "" {
		c.Database.Password = "password"
	}
	if c.Database.Name == "" {
		c.Database.Name = "docuverify"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 100
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if len(c.Workflow.DefaultPaths) == 0 {
		c.Workflow.DefaultPaths = map[string][]string{
			"transcript":              {"dean", "registrar"},
			"recommendation_letter":   {"hod", "dean"},
			"enrollment_verification": {"registrar"},
		}
	}

	if c.Upload.MaxUploadBytes == 0 {
		c.Upload.MaxUploadBytes = 20 << 20
	}
}

func LogConfig(logger *zap.Logger) {
	configLock.RLock()
	defer configLock.RUnlock()

	logger.Info("Application configuration",
		zap.String("port", config.Server.Port),
		zap.Duration("read_timeout", config.Server.ReadTimeout),
		zap.Duration("write_timeout", config.Server.WriteTimeout),
		zap.Duration("session_timeout", config.Security.SessionTimeout),
		zap.String("database_host", config.Database.Host),
		zap.String("database_name", config.Database.Name),
		zap.Int("default_paths", len(config.Workflow.DefaultPaths)),
		zap.Int64("max_upload_bytes", config.Upload.MaxUploadBytes),
	)
}

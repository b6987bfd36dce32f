package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var errSecretKeyRequired = errors.New("config: SHKOLA_SECRETKEY is required outside DEV and TEST")

type (
	Config struct {
		AppName          string
		BaseURL          string // public URL, used in emails
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		WorkDir          string
		SecretKey        string
		SecretGenerated  bool // SecretKey was generated at startup (DEV/TEST only)
		DefaultLocale    Locale
		RollbarToken     string
		SendgridAPIKey   string
		DefaultFromEmail mail.Address

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}

	ServerConfig struct {
		Address         string
		Host            string
		DebugHost       string // pprof & expvar listener; empty disables it
		ShutdownTimeout time.Duration
		SessionMaxAge   time.Duration // 0: cookie lives until the browser closes
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine      string // postgres | memory
		Host        string
		Port        int
		Name        string
		User        string
		Password    string
		DisableTLS  bool
		AutoMigrate bool
	}

	StorageConfig struct {
		UploadDir string
		StaticDir string
	}
)

func (dbc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dbc.Host, dbc.Port)
}

func (dbc DatabaseConfig) InMemory() bool {
	return dbc.Engine == "memory"
}

// NewConfig reads the configuration from the environment, optionally seeded by config/.env.<env>.
func NewConfig() (*Config, error) {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "config: getting working directory")
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config: loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config: stat %s", dotEnvPath)
	}

	setDefaults(v, env)
	v.SetEnvPrefix("shkola")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		AppName:        v.GetString("appName"),
		BaseURL:        strings.TrimSuffix(v.GetString("baseUrl"), "/"),
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		WorkDir:        wd,
		SecretKey:      v.GetString("secretKey"),
		DefaultLocale:  ParseLocale(v.GetString("defaultLocale")),
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridAPIKey: v.GetString("sendgridApiKey"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionMaxAge:   v.GetDuration("server.sessionMaxAge"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:      v.GetString("database.engine"),
			Host:        v.GetString("database.host"),
			Port:        v.GetInt("database.port"),
			Name:        v.GetString("database.name"),
			User:        v.GetString("database.user"),
			Password:    v.GetString("database.password"),
			DisableTLS:  v.GetBool("database.disableTLS"),
			AutoMigrate: v.GetBool("database.autoMigrate"),
		},
		Storage: StorageConfig{
			UploadDir: v.GetString("storage.uploadDir"),
			StaticDir: v.GetString("storage.staticDir"),
		},
	}

	if conf.SecretKey == "" {
		if !(conf.Debug || conf.TestMode) {
			return nil, errSecretKeyRequired
		}
		if conf.SecretKey, err = randomKey(); err != nil {
			return nil, errors.Wrap(err, "config: generating secret key")
		}
		conf.SecretGenerated = true
	}
	return conf, nil
}

func setDefaults(v *viper.Viper, env string) {
	dev := env == "DEV"
	test := env == "TEST"

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", dev)
	v.SetDefault("testMode", test)
	v.SetDefault("appName", "Shkola")
	v.SetDefault("build", "develop")
	v.SetDefault("baseUrl", "http://localhost:8000")
	v.SetDefault("secretKey", "")
	v.SetDefault("defaultLocale", string(LocaleUK))
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", "")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionMaxAge", 7*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "shkola")
	v.SetDefault("database.user", "shkola")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", dev || test)
	v.SetDefault("database.autoMigrate", dev)

	v.SetDefault("storage.uploadDir", "uploads")
	v.SetDefault("storage.staticDir", "static")
}

func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

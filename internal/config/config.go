package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Env variable names. The same keys work from the config file and the
// process environment; the config file is watched for hot-reloads.
const (
	APP_PORT                  = "APP_PORT"
	APP_HOST                  = "APP_HOST"
	APP_SLOT_REFRESH_SECONDS  = "APP_SLOT_REFRESH_SECONDS"
	APP_PRICE_REFRESH_SECONDS = "APP_PRICE_REFRESH_SECONDS"
	DB_HOST                   = "DB_HOST"
	DB_NAME                   = "DB_NAME"
	DB_USERNAME               = "DB_USERNAME"
	DB_PASS                   = "DB_PASS"
	DB_PORT                   = "DB_PORT"
	DB_MAX_OPEN_CONNS         = "DB_MAX_OPEN_CONNS"
	DB_MIN_CONNS              = "DB_MIN_CONNS"
	JAG_DSN                   = "JAG_DSN"
	STORAGE_ROOT              = "STORAGE_ROOT"
	STORAGE_BASE_URL          = "STORAGE_BASE_URL"
	STORAGE_SIGN_SECRET       = "STORAGE_SIGN_SECRET"
	STORAGE_SIGN_TTL_SECONDS  = "STORAGE_SIGN_TTL_SECONDS"
	ADMIN_PASSWORD_HASH       = "ADMIN_PASSWORD_HASH"
	ADMIN_JWT_SECRET          = "ADMIN_JWT_SECRET"
	ADMIN_TOKEN_TTL_HOURS     = "ADMIN_TOKEN_TTL_HOURS"
	MAIL_ENABLED              = "MAIL_ENABLED"
	MAIL_HOST                 = "MAIL_HOST"
	MAIL_PORT                 = "MAIL_PORT"
	MAIL_USERNAME             = "MAIL_USERNAME"
	MAIL_PASSWORD             = "MAIL_PASSWORD"
	MAIL_SENDER               = "MAIL_SENDER"
	EVENT_YEAR                = "EVENT_YEAR"
	EVENT_MAX_SLOTS           = "EVENT_MAX_SLOTS"
)

type Entity struct {
	App     Application `mapstructure:",squash"`
	DB      Database    `mapstructure:",squash"`
	Jag     Jaeger      `mapstructure:",squash"`
	Storage Storage     `mapstructure:",squash"`
	Admin   Admin       `mapstructure:",squash"`
	Mail    Mail        `mapstructure:",squash"`
	Event   Event       `mapstructure:",squash"`
}

const configFile = "./configs/app.env"

func NewConfig() (*Entity, error) {
	viper.SetConfigFile(configFile)

	viper.AllowEmptyEnv(false)
	viper.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, and AutomaticEnv alone does
	// not register any. Binding each key keeps env-only deployments working.
	for _, key := range []string{
		APP_PORT, APP_HOST, APP_SLOT_REFRESH_SECONDS, APP_PRICE_REFRESH_SECONDS,
		DB_HOST, DB_NAME, DB_USERNAME, DB_PASS, DB_PORT, DB_MAX_OPEN_CONNS, DB_MIN_CONNS,
		JAG_DSN,
		STORAGE_ROOT, STORAGE_BASE_URL, STORAGE_SIGN_SECRET, STORAGE_SIGN_TTL_SECONDS,
		ADMIN_PASSWORD_HASH, ADMIN_JWT_SECRET, ADMIN_TOKEN_TTL_HOURS,
		MAIL_ENABLED, MAIL_HOST, MAIL_PORT, MAIL_USERNAME, MAIL_PASSWORD, MAIL_SENDER,
		EVENT_YEAR, EVENT_MAX_SLOTS,
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("NewConfig failed: %w", err)
		}
	}

	viper.SetDefault(APP_SLOT_REFRESH_SECONDS, 60)
	viper.SetDefault(APP_PRICE_REFRESH_SECONDS, 60)
	viper.SetDefault(STORAGE_SIGN_TTL_SECONDS, 3600)
	viper.SetDefault(ADMIN_TOKEN_TTL_HOURS, 12)
	viper.SetDefault(EVENT_YEAR, 2026)
	viper.SetDefault(EVENT_MAX_SLOTS, 32)

	// The file is optional: env-only deployments run without one. With an
	// explicit SetConfigFile a missing file is a plain path error, so the
	// existence check has to happen here.
	if _, err := os.Stat(configFile); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("NewConfig failed: %w", err)
		}
	}

	config := &Entity{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("NewConfig failed: %w", err)
	}

	return config, nil
}

type Application struct {
	Port                string `mapstructure:"APP_PORT"`
	Host                string `mapstructure:"APP_HOST"`
	SlotRefreshSeconds  int    `mapstructure:"APP_SLOT_REFRESH_SECONDS"`
	PriceRefreshSeconds int    `mapstructure:"APP_PRICE_REFRESH_SECONDS"`
}

type Database struct {
	Hostname     string `mapstructure:"DB_HOST"`
	Name         string `mapstructure:"DB_NAME"`
	User         string `mapstructure:"DB_USERNAME"`
	Pass         string `mapstructure:"DB_PASS"`
	Port         uint16 `mapstructure:"DB_PORT"`
	MaxOpenConns int32  `mapstructure:"DB_MAX_OPEN_CONNS"`
	MinConns     int32  `mapstructure:"DB_MIN_CONNS"`
}

type Jaeger struct {
	Dsn string `mapstructure:"JAG_DSN"`
}

type Storage struct {
	Root           string `mapstructure:"STORAGE_ROOT"`
	BaseURL        string `mapstructure:"STORAGE_BASE_URL"`
	SignSecret     string `mapstructure:"STORAGE_SIGN_SECRET"`
	SignTTLSeconds int    `mapstructure:"STORAGE_SIGN_TTL_SECONDS"`
}

type Admin struct {
	PasswordHash  string `mapstructure:"ADMIN_PASSWORD_HASH"`
	JWTSecret     string `mapstructure:"ADMIN_JWT_SECRET"`
	TokenTTLHours int    `mapstructure:"ADMIN_TOKEN_TTL_HOURS"`
}

type Mail struct {
	Enabled  bool   `mapstructure:"MAIL_ENABLED"`
	Hostname string `mapstructure:"MAIL_HOST"`
	Port     string `mapstructure:"MAIL_PORT"`
	Username string `mapstructure:"MAIL_USERNAME"`
	Password string `mapstructure:"MAIL_PASSWORD"`
	Sender   string `mapstructure:"MAIL_SENDER"`
}

type Event struct {
	Year     int `mapstructure:"EVENT_YEAR"`
	MaxSlots int `mapstructure:"EVENT_MAX_SLOTS"`
}

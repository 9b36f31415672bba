package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Quote    QuoteConfig    `mapstructure:"quote"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// AuthConfig holds the operator credentials for the admin API.
// PasswordHash is an argon2id hash; plaintext passwords never appear
// in configuration.
type AuthConfig struct {
	OperatorUsername     string `mapstructure:"operator_username"`
	OperatorPasswordHash string `mapstructure:"operator_password_hash"`
}

// SeedConfig carries the master seed phrase. It must arrive via
// environment (SDE_SEED_MNEMONIC) and is never logged or persisted.
type SeedConfig struct {
	Mnemonic string `mapstructure:"mnemonic"`
}

type ChainConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type QuoteConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Asset          string        `mapstructure:"asset"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
	Enabled     bool   `mapstructure:"enabled"`
}

type PolicyConfig struct {
	MinBuyUSD            string `mapstructure:"min_buy_usd"`
	WithdrawalMultiplier string `mapstructure:"withdrawal_multiplier"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SDE_ (Solana Deposit Engine).
// Nested keys use underscore: SDE_DATABASE_HOST, SDE_SEED_MNEMONIC, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "deposit_engine")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "solana-deposit-engine")
	v.SetDefault("auth.operator_username", "operator")
	v.SetDefault("auth.operator_password_hash", "")
	v.SetDefault("seed.mnemonic", "")
	v.SetDefault("chain.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("chain.poll_interval", "30s")
	v.SetDefault("chain.request_timeout", "10s")
	v.SetDefault("quote.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("quote.asset", "solana")
	v.SetDefault("quote.cache_ttl", "1m")
	v.SetDefault("quote.request_timeout", "10s")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.enabled", true)
	v.SetDefault("policy.min_buy_usd", "10")
	v.SetDefault("policy.withdrawal_multiplier", "2")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SDE_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

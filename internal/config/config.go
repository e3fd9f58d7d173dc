// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goldenbao/jinvault/internal/domain"
)

type Config struct {
	RPCURL               string        `mapstructure:"rpc_url"`
	WalletPrivateKey     string        `mapstructure:"wallet_private_key"`
	TokenMint            string        `mapstructure:"token_mint"`
	GoldMint             string        `mapstructure:"gold_mint"`
	AdminPassword        string        `mapstructure:"admin_password"`
	DatabaseURL          string        `mapstructure:"database_url"`
	SessionDBPath        string        `mapstructure:"session_db_path"`
	BlockchainEnabled    bool          `mapstructure:"blockchain_enabled"`
	DistributionInterval time.Duration `mapstructure:"distribution_interval"`
	JupiterAPIURL        string        `mapstructure:"jupiter_api_url"`
	HTTPAddr             string        `mapstructure:"http_addr"`
	LogFile              string        `mapstructure:"log_file"`
	DebugLogging         bool          `mapstructure:"debug_logging"`

	Protocol domain.ProtocolConfig `mapstructure:"protocol"`
}

const (
	DefaultRPCURL        = "https://api.mainnet-beta.solana.com"
	DefaultJupiterAPIURL = "https://public.jupiterapi.com"
	DefaultGoldMint      = "GoLDppdjB1vDTPSGxyMJFqdnj134yH6Prg9eqsGDiw6A"
	DefaultHTTPAddr      = ":5000"
	DefaultLogFile       = "logs/jinvault.log"
)

// envBindings связывает ключи конфигурации с переменными окружения.
// Для rpc_url первым проверяется HELIUS_RPC_URL, затем SOLANA_RPC.
var envBindings = map[string][]string{
	"rpc_url":               {"HELIUS_RPC_URL", "SOLANA_RPC"},
	"wallet_private_key":    {"CREATOR_WALLET_PRIVATE_KEY"},
	"token_mint":            {"TOKEN_CONTRACT_ADDRESS"},
	"gold_mint":             {"GOLD_MINT_ADDRESS"},
	"admin_password":        {"ADMIN_PASSWORD"},
	"database_url":          {"DATABASE_URL"},
	"session_db_path":       {"SESSION_DB_PATH"},
	"blockchain_enabled":    {"BLOCKCHAIN_ENABLED"},
	"distribution_interval": {"DISTRIBUTION_INTERVAL"},
	"jupiter_api_url":       {"JUPITER_API_URL"},
	"http_addr":             {"HTTP_ADDR"},
	"log_file":              {"LOG_FILE"},
	"debug_logging":         {"DEBUG_LOGGING"},
}

// LoadConfig читает .env (если есть), затем файл конфигурации (если path не пустой)
// и переменные окружения. Переменные окружения имеют приоритет над файлом.
func LoadConfig(path string) (*Config, error) {
	// .env необязателен, его отсутствие не ошибка
	_ = godotenv.Load()

	v := viper.New()

	protocol := domain.DefaultProtocolConfig()
	defaults := map[string]interface{}{
		"rpc_url":                            DefaultRPCURL,
		"gold_mint":                          DefaultGoldMint,
		"blockchain_enabled":                 true,
		"distribution_interval":              time.Duration(0),
		"jupiter_api_url":                    DefaultJupiterAPIURL,
		"http_addr":                          DefaultHTTPAddr,
		"log_file":                           DefaultLogFile,
		"protocol.major_holders_percentage":  protocol.MajorHoldersPercentage,
		"protocol.medium_holders_percentage": protocol.MediumHoldersPercentage,
		"protocol.buyback_percentage":        protocol.BuybackPercentage,
		"protocol.major_min_percentage":      protocol.MajorMinPercentage,
		"protocol.medium_min_percentage":     protocol.MediumMinPercentage,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := bindEnvironment(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, validateConfig(&cfg)
}

func bindEnvironment(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// validateConfig проверяет только формат. Ключ кошелька и адрес токена
// проверяются при инициализации клиента и дают результат "not ready".
func validateConfig(cfg *Config) error {
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if err := validateURLWithCache(cfg.JupiterAPIURL, "http"); err != nil {
		return errors.New("invalid Jupiter API URL protocol")
	}
	if cfg.DistributionInterval < 0 {
		return errors.New("invalid distribution_interval")
	}
	if cfg.DatabaseURL != "" {
		if err := validateURLWithCache(cfg.DatabaseURL, "postgres"); err != nil {
			return errors.New("database_url must be a postgres:// URL")
		}
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

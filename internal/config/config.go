// Package config provides configuration management for the Cask indexer.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/cask-indexer/internal/types"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Chains   ChainsConfig
	Logging  LoggingConfig
}

// ServerConfig holds the read API server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds the optional event archive configuration.
// When Enabled is false the archive is skipped entirely.
type ClickHouseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// RedisConfig holds checkpoint store configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// ChainsConfig holds per-chain configuration
type ChainsConfig struct {
	Enabled []types.ChainID
	Chains  map[types.ChainID]ChainConfig
}

// ContractAddresses is the per-network registry of Cask contract addresses.
// It is loaded once at startup and immutable thereafter.
type ContractAddresses struct {
	Vault             common.Address
	Subscriptions     common.Address
	SubscriptionPlans common.Address
	DCA               common.Address
	P2P               common.Address
	ChainlinkTopup    common.Address
}

// ChainConfig holds configuration for one indexed chain
type ChainConfig struct {
	RPCURL       string
	PollInterval time.Duration
	StartBlock   uint64
	RPCRateLimit int // RPC requests per second allowed by the log worker
	Contracts    ContractAddresses
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "cask_indexer"),
				User:           getEnv("POSTGRES_USER", "cask"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
			ClickHouse: ClickHouseConfig{
				Enabled:  getEnvAsBool("CLICKHOUSE_ENABLED", false),
				Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:     getEnv("CLICKHOUSE_PORT", "9000"),
				Database: getEnv("CLICKHOUSE_DB", "cask_indexer"),
				User:     getEnv("CLICKHOUSE_USER", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	chains, err := loadChainConfigs()
	if err != nil {
		return nil, err
	}
	config.Chains = chains

	return config, nil
}

// loadChainConfigs loads chain-specific configurations. The contract address
// registry is required for every enabled chain: an indexer pointed at a chain
// without addresses can only produce garbage, so that is a startup error.
func loadChainConfigs() (ChainsConfig, error) {
	enabled := strings.Split(getEnv("ENABLED_CHAINS", "ethereum"), ",")

	chains := make(map[types.ChainID]ChainConfig)
	var ids []types.ChainID
	for _, name := range enabled {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		chain := types.ChainID(name)
		prefix := strings.ToUpper(name)

		contracts, err := loadContractAddresses(prefix)
		if err != nil {
			return ChainsConfig{}, fmt.Errorf("chain %s: %w", name, err)
		}

		chains[chain] = ChainConfig{
			RPCURL:       getEnv(prefix+"_RPC_URL", ""),
			PollInterval: getEnvAsDuration(prefix+"_POLL_INTERVAL", 15*time.Second),
			StartBlock:   uint64(getEnvAsInt(prefix+"_START_BLOCK", 0)),
			RPCRateLimit: getEnvAsInt(prefix+"_RPC_RATE_LIMIT", 10),
			Contracts:    contracts,
		}
		ids = append(ids, chain)
	}

	return ChainsConfig{Enabled: ids, Chains: chains}, nil
}

func loadContractAddresses(prefix string) (ContractAddresses, error) {
	addrs := ContractAddresses{}
	for _, entry := range []struct {
		key  string
		dest *common.Address
	}{
		{prefix + "_CASK_VAULT", &addrs.Vault},
		{prefix + "_CASK_SUBSCRIPTIONS", &addrs.Subscriptions},
		{prefix + "_CASK_SUBSCRIPTION_PLANS", &addrs.SubscriptionPlans},
		{prefix + "_CASK_DCA", &addrs.DCA},
		{prefix + "_CASK_P2P", &addrs.P2P},
		{prefix + "_CASK_CHAINLINK_TOPUP", &addrs.ChainlinkTopup},
	} {
		raw := getEnv(entry.key, "")
		if raw == "" {
			return ContractAddresses{}, fmt.Errorf("missing contract address %s", entry.key)
		}
		if !common.IsHexAddress(raw) {
			return ContractAddresses{}, fmt.Errorf("invalid contract address %s=%s", entry.key, raw)
		}
		*entry.dest = common.HexToAddress(raw)
	}
	return addrs, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

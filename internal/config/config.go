// Package config loads the routing engine's own knobs the same way the
// teacher's config package does: YAML defaults, overridden by a .env file,
// overridden again by process environment variables, with hardcoded
// fallbacks as the last resort (teacher's getEnv/getEnvAsInt/... idiom,
// generalized to the §9 knobs this engine needs: percentage step, split
// search bounds, cache bucket sizing, and simulation enablement).
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration tree.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Chains     ChainsConfig     `yaml:"chains"`
	Engine     EngineConfig     `yaml:"engine"`
	Simulation SimulationConfig `yaml:"simulation"`
	NATS       NATSConfig       `yaml:"nats"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ChainsConfig lists the chain ids the validator accepts (§4.2).
type ChainsConfig struct {
	Supported []int64 `yaml:"supported"`
}

// EngineConfig carries the routing-engine-specific knobs §9 leaves as
// implementation choices: percentage step, split-search bounds, and
// cache sizing.
type EngineConfig struct {
	PercentageStep      int           `yaml:"percentage_step"`
	MaxSplits           int           `yaml:"max_splits"`
	MaxSplitRoutes      int           `yaml:"max_split_routes"`
	RouteSplitTimeoutMs int           `yaml:"route_split_timeout_ms"`
	TopNCandidates      int           `yaml:"top_n_candidates"`
	MaxRoutesPerBucket  int64         `yaml:"max_routes_per_bucket"`
	TopNFromCache       int64         `yaml:"top_n_from_cache"`
	GasConcurrency      int           `yaml:"gas_concurrency"`
	CacheTTL            time.Duration `yaml:"cache_ttl_seconds"`
	RequestTimeout      time.Duration `yaml:"request_timeout_seconds"`
}

// SimulationConfig gates §4.9's simulation loop.
type SimulationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NATSConfig points at the optional cache-write-notification bus (§4.6).
type NATSConfig struct {
	URL string `yaml:"url"`
}

// AppConfig is the process-wide singleton, matching the teacher's
// package-level AppConfig convention.
var AppConfig *Config

// loadFromFile mirrors the teacher's loadConfigFromFile: a missing file is
// a warning, not a fatal error, since env vars and fallbacks can still
// produce a usable Config.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: YAML config file not found at %s. Using env vars and defaults only.", path)
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	log.Printf("Loaded configuration defaults from %s", path)
	return nil
}

// Init loads AppConfig from config/config.yaml, then .env, then the
// process environment, in the teacher's own layering order.
func Init() error {
	AppConfig = &Config{}

	if err := loadFromFile("config/config.yaml", AppConfig); err != nil {
		log.Printf("Warning: failed to load config.yaml: %v. Using defaults.", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	AppConfig.Server.Port = getEnv("SERVER_PORT", AppConfig.Server.Port, "8080")
	AppConfig.Server.ReadTimeout = getEnvAsInt("SERVER_READ_TIMEOUT", AppConfig.Server.ReadTimeout, 15)
	AppConfig.Server.WriteTimeout = getEnvAsInt("SERVER_WRITE_TIMEOUT", AppConfig.Server.WriteTimeout, 15)

	AppConfig.Redis.Addr = getEnv("REDIS_ADDR", AppConfig.Redis.Addr, "localhost:6379")
	AppConfig.Redis.Password = getEnv("REDIS_PASSWORD", AppConfig.Redis.Password, "")
	AppConfig.Redis.DB = getEnvAsInt("REDIS_DB", AppConfig.Redis.DB, 0)

	defaultChains := []int64{1, 10, 137, 42161, 8453}
	AppConfig.Chains.Supported = getEnvAsInt64Slice("SUPPORTED_CHAIN_IDS", ",", AppConfig.Chains.Supported, defaultChains)

	AppConfig.Engine.PercentageStep = getEnvAsInt("PERCENTAGE_STEP", AppConfig.Engine.PercentageStep, 5)
	AppConfig.Engine.MaxSplits = getEnvAsInt("MAX_SPLITS", AppConfig.Engine.MaxSplits, 3)
	AppConfig.Engine.MaxSplitRoutes = getEnvAsInt("MAX_SPLIT_ROUTES", AppConfig.Engine.MaxSplitRoutes, 5)
	AppConfig.Engine.RouteSplitTimeoutMs = getEnvAsInt("ROUTE_SPLIT_TIMEOUT_MS", AppConfig.Engine.RouteSplitTimeoutMs, 750)
	AppConfig.Engine.TopNCandidates = getEnvAsInt("TOP_N_CANDIDATES", AppConfig.Engine.TopNCandidates, 3)
	AppConfig.Engine.MaxRoutesPerBucket = int64(getEnvAsInt("MAX_ROUTES_PER_BUCKET", int(AppConfig.Engine.MaxRoutesPerBucket), 20))
	AppConfig.Engine.TopNFromCache = int64(getEnvAsInt("TOP_N_FROM_CACHE", int(AppConfig.Engine.TopNFromCache), 5))
	AppConfig.Engine.GasConcurrency = getEnvAsInt("GAS_CONCURRENCY", AppConfig.Engine.GasConcurrency, 8)
	AppConfig.Engine.CacheTTL = time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", int(AppConfig.Engine.CacheTTL.Seconds()), 300)) * time.Second
	AppConfig.Engine.RequestTimeout = time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", int(AppConfig.Engine.RequestTimeout.Seconds()), 30)) * time.Second

	AppConfig.Simulation.Enabled = getEnvAsBool("SIMULATION_ENABLED", AppConfig.Simulation.Enabled, false)
	AppConfig.NATS.URL = getEnv("NATS_URL", AppConfig.NATS.URL, "")

	return nil
}

func getEnv(key, yamlValue, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if yamlValue != "" {
		return yamlValue
	}
	return fallback
}

func getEnvAsInt(key string, yamlValue, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	if yamlValue != 0 {
		return yamlValue
	}
	return fallback
}

func getEnvAsBool(key string, yamlValue, fallback bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	if yamlValue {
		return yamlValue
	}
	return fallback
}

func getEnvAsInt64Slice(key, separator string, yamlValue, fallback []int64) []int64 {
	valueStr := os.Getenv(key)
	if valueStr != "" {
		parts := strings.Split(valueStr, separator)
		out := make([]int64, 0, len(parts))
		for _, p := range parts {
			if id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
				out = append(out, id)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if len(yamlValue) > 0 {
		return yamlValue
	}
	return fallback
}

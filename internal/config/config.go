// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
)

type Config struct {
	RPCURL        string        `mapstructure:"rpc_url"`
	Commitment    string        `mapstructure:"commitment"`
	KeypairPath   string        `mapstructure:"keypair_path"`
	SearchHistory bool          `mapstructure:"search_history"`
	SkipPreflight bool          `mapstructure:"skip_preflight"`
	AwaitTimeout  time.Duration `mapstructure:"await_timeout"`
	DebugLogging  bool          `mapstructure:"debug_logging"`
	LogFile       string        `mapstructure:"log_file"`
	MetricsFile   string        `mapstructure:"metrics_file"`
}

const (
	DefaultRPCURL       = "https://api.devnet.solana.com"
	DefaultCommitment   = string(rpc.CommitmentConfirmed)
	DefaultKeypairPath  = "~/.config/solana/id.json"
	DefaultAwaitTimeout = 30 * time.Second
	DefaultLogFile      = "txkit.log"

	envPrefix = "SOLANA_TXKIT"
)

// Ключи без значения по умолчанию viper не берёт из окружения при Unmarshal,
// поэтому здесь перечислены все поля Config.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"rpc_url":        DefaultRPCURL,
		"commitment":     DefaultCommitment,
		"keypair_path":   DefaultKeypairPath,
		"await_timeout":  DefaultAwaitTimeout,
		"log_file":       DefaultLogFile,
		"search_history": false,
		"skip_preflight": false,
		"debug_logging":  false,
		"metrics_file":   "",
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig читает файл конфигурации (JSON или YAML), накладывает переменные
// окружения SOLANA_TXKIT_* и проверяет результат. Пустой path означает
// только значения по умолчанию и окружение.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default возвращает конфигурацию без файла.
func Default() *Config {
	cfg, err := LoadConfig("")
	if err != nil {
		// окружение может быть испорчено; значения по умолчанию валидны всегда
		return &Config{
			RPCURL:       DefaultRPCURL,
			Commitment:   DefaultCommitment,
			KeypairPath:  DefaultKeypairPath,
			AwaitTimeout: DefaultAwaitTimeout,
			LogFile:      DefaultLogFile,
		}
	}
	return cfg
}

// CommitmentType возвращает уровень commitment для solana-go.
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// Validate повторяет проверки LoadConfig, например после переопределения флагами.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q: expected processed, confirmed or finalized", cfg.Commitment)
	}
	if cfg.AwaitTimeout < 0 {
		return errors.New("invalid await_timeout")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// ExpandPath раскрывает ведущий ~ в домашний каталог.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

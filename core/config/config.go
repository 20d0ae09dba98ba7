package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"gopkg.in/yaml.v2"

	"github.com/AvaProtocol/avax-workflow/core/services"
	"github.com/AvaProtocol/avax-workflow/core/taskengine"
)

const (
	DefaultEthRpcUrl       = "https://api.avax-test.network/ext/bc/C/rpc"
	DefaultDbPath          = "./data/runs"
	DefaultHTTPBindAddress = "localhost:8080"
)

// Config is the resolved runtime configuration of the engine, its ports and
// the http api
type Config struct {
	Environment sdklogging.LogLevel
	Logger      sdklogging.Logger

	EthRpcUrl   string
	ChainID     int64
	PrivateKey  string `json:"-"`
	ExplorerURL string

	DbPath string

	HTTPBindAddress string
	JWTSecret       string `json:"-"`
	HTTPTimeout     time.Duration

	AI       services.AIConfig
	WhatsApp services.WhatsAppConfig
	Prices   services.PriceFeedConfig
}

// These are read from configPath
type ConfigRaw struct {
	Environment     sdklogging.LogLevel `yaml:"environment"`
	EthRpcUrl       string              `yaml:"eth_rpc_url"`
	ChainID         int64               `yaml:"chain_id"`
	PrivateKey      string              `yaml:"private_key"`
	ExplorerURL     string              `yaml:"explorer_url"`
	DbPath          string              `yaml:"db_path"`
	HTTPBindAddress string              `yaml:"http_bind_address"`
	JWTSecret       string              `yaml:"jwt_secret"`
	HTTPTimeout     int                 `yaml:"http_timeout_seconds"`

	AI struct {
		Provider string `yaml:"provider"`
		ApiKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"ai"`

	WhatsApp struct {
		ApiUrl        string `yaml:"api_url"`
		Token         string `yaml:"token"`
		PhoneNumberID string `yaml:"phone_number_id"`
	} `yaml:"whatsapp"`

	Prices struct {
		TokenPriceURL   string `yaml:"token_price_url"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
		Marketplaces    map[string]struct {
			BaseURL string `yaml:"base_url"`
			ApiKey  string `yaml:"api_key"`
		} `yaml:"marketplaces"`
	} `yaml:"prices"`
}

// ReadConfigRaw parses the yaml file at path. An empty path yields an empty
// ConfigRaw so that defaults and environment variables alone can drive a run.
func ReadConfigRaw(path string) (*ConfigRaw, error) {
	raw := &ConfigRaw{}
	if path == "" {
		return raw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %s, make sure it is a valid yaml file: %w", path, err)
	}
	return raw, nil
}

// NewConfig reads the yaml file, applies environment overrides and defaults
// and builds the logger
func NewConfig(configFilePath string) (*Config, error) {
	raw, err := ReadConfigRaw(configFilePath)
	if err != nil {
		return nil, err
	}

	applyEnv(raw)

	c := fromRaw(raw)
	if err := c.validate(); err != nil {
		return nil, err
	}

	c.Logger, err = sdklogging.NewZapLogger(c.Environment)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func fromRaw(raw *ConfigRaw) *Config {
	c := &Config{
		Environment:     raw.Environment,
		EthRpcUrl:       firstNonEmpty(raw.EthRpcUrl, DefaultEthRpcUrl),
		ChainID:         raw.ChainID,
		PrivateKey:      strings.TrimSpace(raw.PrivateKey),
		ExplorerURL:     firstNonEmpty(raw.ExplorerURL, taskengine.DefaultExplorerURL),
		DbPath:          firstNonEmpty(raw.DbPath, DefaultDbPath),
		HTTPBindAddress: firstNonEmpty(raw.HTTPBindAddress, DefaultHTTPBindAddress),
		JWTSecret:       raw.JWTSecret,
		HTTPTimeout:     seconds(raw.HTTPTimeout, services.DefaultHTTPTimeout),

		AI: services.AIConfig{
			Provider: raw.AI.Provider,
			APIKey:   raw.AI.ApiKey,
			Model:    raw.AI.Model,
			BaseURL:  raw.AI.BaseURL,
		},
		WhatsApp: services.WhatsAppConfig{
			APIURL:        firstNonEmpty(raw.WhatsApp.ApiUrl, services.DefaultWhatsAppAPIURL),
			Token:         raw.WhatsApp.Token,
			PhoneNumberID: raw.WhatsApp.PhoneNumberID,
		},
		Prices: services.PriceFeedConfig{
			TokenPriceURL: raw.Prices.TokenPriceURL,
			CacheTTL:      seconds(raw.Prices.CacheTTLSeconds, services.DefaultPriceCacheTTL),
			Marketplaces:  map[string]services.MarketplaceConfig{},
		},
	}

	if c.Environment == "" {
		c.Environment = sdklogging.Development
	}
	if c.ChainID == 0 {
		c.ChainID = taskengine.DefaultExpectedChainID
	}

	for name, m := range raw.Prices.Marketplaces {
		c.Prices.Marketplaces[strings.ToLower(name)] = services.MarketplaceConfig{
			BaseURL: m.BaseURL,
			APIKey:  m.ApiKey,
		}
	}

	return c
}

func (c *Config) validate() error {
	if c.Environment != sdklogging.Development && c.Environment != sdklogging.Production {
		return fmt.Errorf("config: environment must be %s or %s, got %q", sdklogging.Development, sdklogging.Production, c.Environment)
	}
	if c.ChainID < 0 {
		return fmt.Errorf("config: chain_id must be positive, got %d", c.ChainID)
	}
	for name := range c.Prices.Marketplaces {
		if taskengine.NormalizeMarketplace(name) != name {
			return fmt.Errorf("config: unknown marketplace %q, expected one of %v", name, taskengine.Marketplaces)
		}
	}
	return nil
}

// HasSigner reports whether a private key is configured
func (c *Config) HasSigner() bool {
	return c.PrivateKey != ""
}

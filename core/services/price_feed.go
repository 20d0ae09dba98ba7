package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/allegro/bigcache/v3"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

const DefaultPriceCacheTTL = time.Minute

var ErrMarketplaceNotConfigured = errors.New("marketplace is not configured")

type MarketplaceConfig struct {
	BaseURL string
	APIKey  string
}

type PriceFeedConfig struct {
	// TokenPriceURL answers GET ?symbol=AVAX with {"symbol": "AVAX", "price": 27.5}
	TokenPriceURL string
	// keyed by marketplace name, see taskengine.Marketplaces
	Marketplaces map[string]MarketplaceConfig
	// zero disables caching
	CacheTTL time.Duration
}

type tokenPriceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type floorPriceResponse struct {
	FloorPrice float64 `json:"floorPrice"`
	LastSale   float64 `json:"lastSale"`
	Currency   string  `json:"currency"`
	Timestamp  int64   `json:"timestamp"`
}

// PriceFeed reads token and NFT floor prices over HTTP, keeping answers in a
// short lived cache
type PriceFeed struct {
	client *resty.Client
	cfg    PriceFeedConfig
	cache  *bigcache.BigCache
	logger sdklogging.Logger
	now    func() time.Time
}

func NewPriceFeed(cfg PriceFeedConfig, log sdklogging.Logger) (*PriceFeed, error) {
	p := &PriceFeed{
		client: resty.New().SetTimeout(10 * time.Second).SetHeader("Accept", "application/json"),
		cfg:    cfg,
		logger: logger.EnsureLogger(log),
		now:    time.Now,
	}

	if cfg.CacheTTL > 0 {
		cacheConfig := bigcache.DefaultConfig(cfg.CacheTTL)
		cacheConfig.Shards = 16
		cacheConfig.MaxEntriesInWindow = 1024
		cacheConfig.MaxEntrySize = 256
		cacheConfig.Verbose = false

		cache, err := bigcache.New(context.Background(), cacheConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create price cache: %w", err)
		}
		p.cache = cache
	}

	return p, nil
}

func (p *PriceFeed) Close() error {
	if p.cache != nil {
		return p.cache.Close()
	}
	return nil
}

func (p *PriceFeed) cached(key string, out any) bool {
	if p.cache == nil {
		return false
	}
	body, err := p.cache.Get(key)
	if err != nil {
		return false
	}
	return json.Unmarshal(body, out) == nil
}

func (p *PriceFeed) remember(key string, v any) {
	if p.cache == nil {
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.cache.Set(key, body); err != nil {
		p.logger.Debug("cannot cache price", "key", key, "error", err)
	}
}

func (p *PriceFeed) TokenPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if p.cfg.TokenPriceURL == "" {
		return decimal.Zero, fmt.Errorf("token price url is not configured")
	}

	cacheKey := "token:" + symbol
	result := &tokenPriceResponse{}
	if p.cached(cacheKey, result) {
		p.logger.Debug("using cached token price", "symbol", symbol, "price", result.Price.String())
		return result.Price, nil
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(result).
		Get(p.cfg.TokenPriceURL)
	if err != nil {
		return decimal.Zero, fmt.Errorf("token price request failed: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("token price api returned %d", resp.StatusCode())
	}

	p.remember(cacheKey, result)
	return result.Price, nil
}

func (p *PriceFeed) FloorPrice(ctx context.Context, marketplace, contract, tokenID string) (*taskengine.NFTPrice, error) {
	market, ok := p.cfg.Marketplaces[marketplace]
	if !ok || market.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrMarketplaceNotConfigured, marketplace)
	}

	tokenKey := tokenID
	if tokenKey == "" {
		tokenKey = "collection"
	}
	cacheKey := fmt.Sprintf("nft:%s:%s:%s", marketplace, strings.ToLower(contract), tokenKey)

	price := &taskengine.NFTPrice{}
	if p.cached(cacheKey, price) {
		return price, nil
	}

	result := &floorPriceResponse{}
	request := p.client.R().
		SetContext(ctx).
		SetPathParam("contract", contract).
		SetResult(result)
	if tokenID != "" {
		request.SetQueryParam("tokenId", tokenID)
	}
	if market.APIKey != "" {
		request.SetHeader("X-API-Key", market.APIKey)
	}

	resp, err := request.Get(strings.TrimRight(market.BaseURL, "/") + "/collections/{contract}/floor")
	if err != nil {
		return nil, fmt.Errorf("%s floor price request failed: %w", marketplace, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s floor price api returned %d", marketplace, resp.StatusCode())
	}

	price = &taskengine.NFTPrice{
		FloorPrice: result.FloorPrice,
		LastSale:   result.LastSale,
		Currency:   result.Currency,
		Timestamp:  result.Timestamp,
	}
	if price.Currency == "" {
		price.Currency = "AVAX"
	}
	if price.Timestamp == 0 {
		price.Timestamp = p.now().UnixMilli()
	}

	p.remember(cacheKey, price)
	return price, nil
}

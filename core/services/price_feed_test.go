package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPriceIsCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "AVAX", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"AVAX","price":"27.5"}`))
	}))
	defer srv.Close()

	feed, err := NewPriceFeed(PriceFeedConfig{TokenPriceURL: srv.URL, CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	defer feed.Close()

	for i := 0; i < 3; i++ {
		price, err := feed.TokenPrice(context.Background(), "avax")
		require.NoError(t, err)
		assert.Equal(t, "27.5", price.String())
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestTokenPriceWithoutCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"AVAX","price":30}`))
	}))
	defer srv.Close()

	feed, err := NewPriceFeed(PriceFeedConfig{TokenPriceURL: srv.URL}, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		price, err := feed.TokenPrice(context.Background(), "AVAX")
		require.NoError(t, err)
		assert.Equal(t, "30", price.String())
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestFloorPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/0xabc/floor", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("tokenId"))
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"floorPrice":1.25,"lastSale":1.1}`))
	}))
	defer srv.Close()

	feed, err := NewPriceFeed(PriceFeedConfig{
		Marketplaces: map[string]MarketplaceConfig{"joepegs": {BaseURL: srv.URL + "/", APIKey: "key"}},
	}, nil)
	require.NoError(t, err)
	feed.now = func() time.Time { return time.UnixMilli(1714564800000) }

	price, err := feed.FloorPrice(context.Background(), "joepegs", "0xabc", "7")
	require.NoError(t, err)

	assert.Equal(t, 1.25, price.FloorPrice)
	assert.Equal(t, 1.1, price.LastSale)
	assert.Equal(t, "AVAX", price.Currency)
	assert.EqualValues(t, 1714564800000, price.Timestamp)

	_, err = feed.FloorPrice(context.Background(), "kalao", "0xabc", "")
	assert.ErrorIs(t, err, ErrMarketplaceNotConfigured)
}

func TestFloorPriceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	feed, err := NewPriceFeed(PriceFeedConfig{
		Marketplaces: map[string]MarketplaceConfig{"opensea": {BaseURL: srv.URL}},
	}, nil)
	require.NoError(t, err)

	_, err = feed.FloorPrice(context.Background(), "opensea", "0xabc", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

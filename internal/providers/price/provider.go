package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const cacheKey = "arkloyalty:price:usd"

// Provider returns the current token price in USD.
type Provider interface {
	PriceUsd(ctx context.Context) (decimal.Decimal, error)
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Redis  *redis.Client `optional:"true"`
}

type httpProvider struct {
	log      *zap.Logger
	endpoint string
	client   *http.Client
	redis    *redis.Client
	cacheTTL time.Duration

	mu       sync.Mutex
	lastGood decimal.Decimal
	hasLast  bool
}

func New(p Params) Provider {
	return &httpProvider{
		log:      p.Log.Named("providers.price"),
		endpoint: p.Config.Providers.PriceEndpoint,
		client:   &http.Client{Timeout: p.Config.Providers.RequestTimeout},
		redis:    p.Redis,
		cacheTTL: p.Config.Providers.PriceCacheTTL,
	}
}

type priceResponse struct {
	PriceUsd decimal.Decimal `json:"price_usd"`
}

func (p *httpProvider) PriceUsd(ctx context.Context) (decimal.Decimal, error) {
	if cached, ok := p.fromCache(ctx); ok {
		return cached, nil
	}

	price, err := p.fetch(ctx)
	if err != nil {
		p.mu.Lock()
		last, hasLast := p.lastGood, p.hasLast
		p.mu.Unlock()
		if hasLast {
			p.log.Warn("price fetch failed, using last known price", zap.Error(err))
			return last, nil
		}
		return decimal.Zero, err
	}

	p.mu.Lock()
	p.lastGood = price
	p.hasLast = true
	p.mu.Unlock()

	p.toCache(ctx, price)
	return price, nil
}

func (p *httpProvider) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("price provider status %d", resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("price provider decode: %w", err)
	}
	if body.PriceUsd.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("price provider returned negative price %s", body.PriceUsd)
	}

	return body.PriceUsd, nil
}

func (p *httpProvider) fromCache(ctx context.Context) (decimal.Decimal, bool) {
	if p.redis == nil {
		return decimal.Zero, false
	}

	raw, err := p.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			p.log.Warn("price cache read failed", zap.Error(err))
		}
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

func (p *httpProvider) toCache(ctx context.Context, price decimal.Decimal) {
	if p.redis == nil {
		return
	}
	if err := p.redis.Set(ctx, cacheKey, price.String(), p.cacheTTL).Err(); err != nil {
		p.log.Warn("price cache write failed", zap.Error(err))
	}
}

package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provider returns the on-chain token balance for a wallet.
type Provider interface {
	Balance(ctx context.Context, walletAddress string) (decimal.Decimal, error)
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
}

type httpProvider struct {
	log      *zap.Logger
	endpoint string
	client   *http.Client
}

func New(p Params) Provider {
	return &httpProvider{
		log:      p.Log.Named("providers.balance"),
		endpoint: p.Config.Providers.BalanceEndpoint,
		client:   &http.Client{Timeout: p.Config.Providers.RequestTimeout},
	}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (p *httpProvider) Balance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s?wallet=%s", p.endpoint, url.QueryEscape(walletAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("balance provider status %d", resp.StatusCode)
	}

	var body balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("balance provider decode: %w", err)
	}

	return body.Balance, nil
}

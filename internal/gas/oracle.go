package gas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dexArb/internal/model"
)

// DefaultStationURL is the public BSC gas station.
const DefaultStationURL = "https://api.debank.com/chain/gas_price_dict_v2?chain=bsc"

// PriceSuggester is the node-side gas price source.
type PriceSuggester interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Oracle reads gas price tiers from an HTTP gas station and falls back to the
// node's eth_gasPrice.
type Oracle struct {
	stationURL string
	http       *http.Client
	node       PriceSuggester
	logger     *zap.Logger
}

func NewOracle(stationURL string, node PriceSuggester, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		stationURL: stationURL,
		http:       &http.Client{Timeout: 5 * time.Second},
		node:       node,
		logger:     logger,
	}
}

type stationTier struct {
	Price float64 `json:"price"`
}

type stationResponse struct {
	Data struct {
		Slow   *stationTier `json:"slow"`
		Normal *stationTier `json:"normal"`
		Fast   *stationTier `json:"fast"`
	} `json:"data"`
}

// Quote never fails. When neither source answers it returns a zero quote.
func (o *Oracle) Quote(ctx context.Context) model.GasQuote {
	if o.stationURL != "" {
		quote, err := o.fromStation(ctx)
		if err == nil && !quote.IsZero() {
			return quote
		}
		o.logger.Debug("gas station unavailable, using node price", zap.Error(err))
	}

	if o.node != nil {
		price, err := o.node.SuggestGasPrice(ctx)
		if err == nil && price != nil {
			return model.UniformGasQuote(price)
		}
		o.logger.Warn("gas price unavailable", zap.Error(err))
	}

	return model.UniformGasQuote(new(big.Int))
}

func (o *Oracle) fromStation(ctx context.Context) (model.GasQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.stationURL, nil)
	if err != nil {
		return model.GasQuote{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return model.GasQuote{}, fmt.Errorf("gas station: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.GasQuote{}, fmt.Errorf("gas station status %d: %s", resp.StatusCode, body)
	}

	var payload stationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.GasQuote{}, fmt.Errorf("decode gas station: %w", err)
	}
	if payload.Data.Slow == nil || payload.Data.Normal == nil || payload.Data.Fast == nil {
		return model.GasQuote{}, fmt.Errorf("gas station response missing tiers")
	}

	return model.GasQuote{
		Low:    floorWei(payload.Data.Slow.Price),
		Medium: floorWei(payload.Data.Normal.Price),
		High:   floorWei(payload.Data.Fast.Price),
	}, nil
}

func floorWei(price float64) *big.Int {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return new(big.Int)
	}
	out, _ := big.NewFloat(math.Floor(price)).Int(nil)
	return out
}

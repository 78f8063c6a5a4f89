package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"chartsight/internal/cache"
)

// Provider abstracts the vision-capable model endpoint.
type Provider interface {
	CompleteJSON(ctx context.Context, prompt string, imageDataURL string) (string, error)
}

// ProviderError wraps any failure of the outbound call or of decoding its
// reply. It is the only error kind this component produces.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "provider: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Request carries one chart image plus the three categorical parameters.
type Request struct {
	Image        []byte
	TradingStyle string
	RiskProfile  string
	AssetType    string
}

// Analyzer builds the provider call for a chart image and normalizes the
// reply. It performs no persistence; the caller owns that. When Cache is set,
// identical requests within CacheTTL are served without a provider call.
type Analyzer struct {
	Provider Provider
	Cache    cache.Store
	CacheTTL time.Duration
	Logger   *zap.Logger
}

func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	var key string
	if a.Cache != nil {
		key = cacheKey(req)
		if b, found, err := a.Cache.Get(ctx, key); err == nil && found {
			var res Result
			if err := json.Unmarshal(b, &res); err == nil {
				return &res, nil
			}
		}
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.Image)
	prompt := buildPrompt(req.TradingStyle, req.RiskProfile, req.AssetType)

	content, err := a.Provider.CompleteJSON(ctx, prompt, dataURL)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	res, err := Normalize(content)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	if a.Cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := a.Cache.Set(ctx, key, b, a.CacheTTL); err != nil && a.Logger != nil {
				a.Logger.Debug("analysis cache write failed", zap.Error(err))
			}
		}
	}
	return res, nil
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write(req.Image)
	h.Write([]byte("\x00" + req.TradingStyle + "\x00" + req.RiskProfile + "\x00" + req.AssetType))
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

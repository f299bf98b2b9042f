package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/cache"
	"github.com/sahilchouksey/partner-hub/utils/metrics"
)

const (
	defaultCacheTTL = 7 * 24 * time.Hour
	maxTopologySize = 32 << 20
)

// Cache stores the raw topology document between restarts.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	URL        string
	Object     string
	HTTPClient *http.Client
	Cache      Cache
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

// Loader fetches the boundary topology once per process. The outcome,
// success or failure, is kept for the lifetime of the Loader.
type Loader struct {
	cfg LoaderConfig
	log *zap.Logger

	once sync.Once
	fc   *geojson.FeatureCollection
	err  error
}

// NewLoader creates a Loader; nothing is fetched until Countries is called.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Object == "" {
		cfg.Object = "countries"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = utils.Log
	}
	return &Loader{cfg: cfg, log: logger.Named("geo")}
}

// Countries returns the country features, loading them on first use.
func (l *Loader) Countries(ctx context.Context) (*geojson.FeatureCollection, error) {
	l.once.Do(func() {
		l.fc, l.err = l.load(context.WithoutCancel(ctx))
		if l.err != nil {
			metrics.IncrementBoundaryLoad("error")
			l.log.Error("failed to load map boundaries", zap.String("url", l.cfg.URL), zap.Error(l.err))
			return
		}
		l.log.Info("map boundaries loaded", zap.Int("features", len(l.fc.Features)))
	})
	return l.fc, l.err
}

func (l *Loader) load(ctx context.Context) (*geojson.FeatureCollection, error) {
	key := "geo:topology:" + l.cfg.URL

	if l.cfg.Cache != nil {
		cached, err := l.cfg.Cache.Get(ctx, key)
		switch {
		case err == nil:
			fc, decodeErr := DecodeTopology([]byte(cached), l.cfg.Object)
			if decodeErr == nil {
				metrics.IncrementBoundaryLoad("cache")
				return fc, nil
			}
			l.log.Warn("discarding cached topology", zap.Error(decodeErr))
		case !errors.Is(err, cache.ErrNotFound):
			l.log.Warn("topology cache read failed", zap.Error(err))
		}
	}

	data, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	fc, err := DecodeTopology(data, l.cfg.Object)
	if err != nil {
		return nil, err
	}
	metrics.IncrementBoundaryLoad("remote")

	if l.cfg.Cache != nil {
		if err := l.cfg.Cache.Set(ctx, key, data, l.cfg.CacheTTL); err != nil {
			l.log.Warn("topology cache write failed", zap.Error(err))
		}
	}
	return fc, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	if l.cfg.URL == "" {
		return nil, errors.New("no topology URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch topology: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topology endpoint returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTopologySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read topology: %w", err)
	}
	return data, nil
}

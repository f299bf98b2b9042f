package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/metrics"
)

// Fetcher loads the partnership records for a college filter.
type Fetcher interface {
	ListPartnerships(ctx context.Context, college string) ([]model.Partnership, error)
}

// BoundarySource provides country boundary features for the map panel.
type BoundarySource interface {
	Countries(ctx context.Context) (*geojson.FeatureCollection, error)
}

// State is the phase of a View.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Snapshot is what a View currently shows.
type Snapshot struct {
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	Dashboard Dashboard `json:"dashboard"`
}

// View holds the records and aggregates for the most recently resolved
// filter change. A fetch is never cancelled by a newer one: whichever
// response resolves last overwrites the state.
type View struct {
	fetcher    Fetcher
	boundaries BoundarySource
	now        func() time.Time
	log        *zap.Logger

	mu       sync.RWMutex
	state    State
	filter   Filter
	records  []model.Partnership
	lastErr  error
	snapshot Dashboard
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ViewOption {
	return func(v *View) { v.now = now }
}

// WithLogger sets the view logger.
func WithLogger(l *zap.Logger) ViewOption {
	return func(v *View) { v.log = l }
}

// NewView creates a ready, empty view. boundaries may be nil.
func NewView(fetcher Fetcher, boundaries BoundarySource, opts ...ViewOption) *View {
	v := &View{
		fetcher:    fetcher,
		boundaries: boundaries,
		now:        time.Now,
		log:        utils.Log,
		state:      StateReady,
		filter:     Filter{}.Normalize(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.snapshot = Build(nil, v.filter, v.now(), nil)
	return v
}

// Apply switches the view to filter: it enters loading while the fetch is in
// flight, keeping the previous data, then recomputes and becomes ready. A
// fetch failure leaves the view ready with no records and the error set.
func (v *View) Apply(ctx context.Context, filter Filter) Snapshot {
	filter = filter.Normalize()

	v.mu.Lock()
	v.state = StateLoading
	v.filter = filter
	v.mu.Unlock()

	records, err := v.fetcher.ListPartnerships(ctx, filter.College)
	if err != nil {
		utils.WithRequest(ctx, v.log).Warn("failed to fetch partnerships",
			zap.String("college", filter.College), zap.Error(err))
		records = nil
		metrics.IncrementDashboardBuild(string(filter.TimeFilter), "fetch_error")
	} else {
		metrics.IncrementDashboardBuild(string(filter.TimeFilter), "ok")
	}

	built := Build(records, filter, v.now(), v.loadBoundaries(ctx))

	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = filter
	v.records = records
	v.lastErr = err
	v.snapshot = built
	v.state = StateReady
	return v.snapshotLocked()
}

// Snapshot returns the current state without fetching.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshotLocked()
}

// Records returns the records behind the current snapshot.
func (v *View) Records() []model.Partnership {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Partnership(nil), v.records...)
}

func (v *View) snapshotLocked() Snapshot {
	s := Snapshot{State: v.state, Dashboard: v.snapshot}
	if v.lastErr != nil {
		s.Error = v.lastErr.Error()
	}
	return s
}

func (v *View) loadBoundaries(ctx context.Context) *geojson.FeatureCollection {
	if v.boundaries == nil {
		return nil
	}
	fc, err := v.boundaries.Countries(ctx)
	if err != nil {
		utils.WithRequest(ctx, v.log).Warn("map boundaries unavailable", zap.Error(err))
		return nil
	}
	return fc
}

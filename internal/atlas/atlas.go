package atlas

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// cancelCheckInterval is how many regions a worker resolves between
// context checks.
const cancelCheckInterval = 256

// Region is one box of the atlas with its sigma intervals.
type Region struct {
	// Index is the region's position in product order.
	Index  int        `json:"index"`
	Bounds Box        `json:"bounds"`
	Sigma  []Interval `json:"sigma"`
}

// Atlas is the decomposition of the phase space plus per-region sigma bounds.
type Atlas struct {
	Names      []string    `json:"names"`
	Lower      []float64   `json:"lower"`
	Upper      []float64   `json:"upper"`
	DecayLower []float64   `json:"decay_lower"`
	DecayUpper []float64   `json:"decay_upper"`
	Ordering   Ordering    `json:"ordering"`
	Partitions []Partition `json:"partitions"`
	Regions    []Region    `json:"regions"`
}

// Dimension returns the number of variables.
func (a *Atlas) Dimension() int {
	return len(a.Names)
}

// Arrays is the plain-array contract toward atlas renderers.
// Regions and sigma arrays have shape region count × dimension.
type Arrays struct {
	LowerBounds []float64
	UpperBounds []float64
	LowerDecay  []float64
	UpperDecay  []float64
	Regions     [][][2]float64
	LowerSigmas [][]float64
	UpperSigmas [][]float64
}

// Arrays flattens the atlas into plain numeric arrays.
func (a *Atlas) Arrays() Arrays {
	out := Arrays{
		LowerBounds: append([]float64(nil), a.Lower...),
		UpperBounds: append([]float64(nil), a.Upper...),
		LowerDecay:  append([]float64(nil), a.DecayLower...),
		UpperDecay:  append([]float64(nil), a.DecayUpper...),
		Regions:     make([][][2]float64, len(a.Regions)),
		LowerSigmas: make([][]float64, len(a.Regions)),
		UpperSigmas: make([][]float64, len(a.Regions)),
	}
	for r, region := range a.Regions {
		box := make([][2]float64, len(region.Bounds))
		for i, iv := range region.Bounds {
			box[i] = [2]float64{iv.Lo, iv.Hi}
		}
		out.Regions[r] = box

		lo := make([]float64, len(region.Sigma))
		hi := make([]float64, len(region.Sigma))
		for i, iv := range region.Sigma {
			lo[i], hi[i] = iv.Lo, iv.Hi
		}
		out.LowerSigmas[r] = lo
		out.UpperSigmas[r] = hi
	}
	return out
}

// FocalPoint returns -mid(sigma)/mid(decay) per variable for region r:
// the point the linear flow of that box is attracted to.
func (a *Atlas) FocalPoint(r int) []float64 {
	region := a.Regions[r]
	out := make([]float64, len(region.Sigma))
	for i, s := range region.Sigma {
		gamma := 0.5 * (a.DecayLower[i] + a.DecayUpper[i])
		out[i] = -s.Mid() / gamma
	}
	return out
}

// Option configures Build.
type Option func(*config)

type config struct {
	workers  int
	ordering Ordering
	logger   *slog.Logger
}

// WithWorkers bounds the number of goroutines resolving regions.
// n <= 0 selects runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithOrdering selects the linearization of the region product.
// Default: FirstFastest.
func WithOrdering(o Ordering) Option {
	return func(c *config) {
		c.ordering = o
	}
}

// WithLogger sets the logger for build diagnostics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Build computes the atlas of spec.
//
// Failures are fatal and no partial atlas is returned. The result, and
// the error when several regions fail, do not depend on the worker count.
func Build(ctx context.Context, spec *model.Spec, opts ...Option) (*Atlas, error) {
	cfg := config{workers: 1, ordering: FirstFastest}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.ordering != FirstFastest && cfg.ordering != LastFastest {
		return nil, &InvalidModelError{Field: "ordering", Message: cfg.ordering.String() + " is not supported"}
	}

	in, err := BuildInteraction(spec)
	if err != nil {
		return nil, err
	}
	if !isFinite(spec.Delta) || spec.Delta < 0 {
		return nil, &InvalidBoundsError{Field: "delta", Value: spec.Delta, Reason: "must be finite and non-negative"}
	}

	maps := make([]InteractionMap, len(spec.Variables))
	for j, v := range spec.Variables {
		if maps[j], err = NewInteractionMap(v); err != nil {
			return nil, err
		}
	}

	upper, err := UpperBounds(spec)
	if err != nil {
		return nil, err
	}

	domain, err := NewDomain(in.Thresholds, in.Names, upper, cfg.ordering)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("domain enumerated",
		"model", spec.Name,
		"variables", len(in.Names),
		"regions", domain.Count(),
		"ordering", cfg.ordering.String())

	resolver := NewResolver(in, maps, spec.Delta)
	regions, err := resolveRegions(ctx, domain, resolver, cfg.workers)
	if err != nil {
		return nil, err
	}

	a := &Atlas{
		Names:      in.Names,
		Lower:      make([]float64, len(upper)),
		Upper:      upper,
		DecayLower: make([]float64, len(spec.Variables)),
		DecayUpper: make([]float64, len(spec.Variables)),
		Ordering:   cfg.ordering,
		Partitions: domain.Partitions,
		Regions:    regions,
	}
	for j, v := range spec.Variables {
		a.DecayLower[j] = v.Decay.Lower
		a.DecayUpper[j] = v.Decay.Upper
	}

	cfg.logger.Info("atlas built", "model", spec.Name, "regions", len(regions), "workers", cfg.workers)
	return a, nil
}

// resolveRegions splits the product index range into contiguous chunks,
// one per worker. Each chunk stops at its first failure; chunks are
// scanned in order afterwards, so the lowest failing index wins.
func resolveRegions(ctx context.Context, d *Domain, r *Resolver, workers int) ([]Region, error) {
	n := d.Count()
	regions := make([]Region, n)
	workers = max(1, min(workers, n))
	chunk := (n + workers - 1) / workers
	failures := make([]error, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		w := w // per-iteration copy (pre-Go 1.22 loop semantics)
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				if (idx-start)%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				box := d.Box(idx)
				sigma, err := r.Resolve(idx, box)
				if err != nil {
					failures[w] = err
					return nil
				}
				regions[idx] = Region{Index: idx, Bounds: box, Sigma: sigma}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}
	return regions, nil
}

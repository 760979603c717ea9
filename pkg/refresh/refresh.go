// Package refresh fetches the source datasets and stores them in the local
// cache.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/loader"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Store is the write side of the dataset cache.
type Store interface {
	ReplaceDataset(ctx context.Context, d loader.Dataset, source string, b *loader.Batch) error
	SaveBoundaries(ctx context.Context, source string, body []byte) error
}

// Locker serializes writers across processes.
type Locker interface {
	Lock() error
	Unlock() error
}

type Config struct {
	Source  loader.Provider
	Sources loader.Sources // recorded with each load
	Store   Store
	Lock    Locker // optional
	Log     Logger // optional; nil = no logging
}

// Loaded describes one dataset written to the store.
type Loaded struct {
	Dataset loader.Dataset `json:"dataset"`
	Rows    int            `json:"rows"`
	Kept    int            `json:"kept"`
	Dropped int            `json:"dropped"`
}

type Result struct {
	Loaded     []Loaded
	Boundaries int // regions stored, 0 when the fetch failed
	Errors     []error
}

type fetched struct {
	batches    map[loader.Dataset]*loader.Batch
	boundaries []byte
	regions    int
}

// Run fetches the two datasets and the boundaries concurrently, then writes
// whatever succeeded. A failed resource is recorded in Result.Errors and
// leaves its cached copy untouched. Run only fails when nothing could be
// fetched or the lock cannot be taken.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}

	result := &Result{}
	f := fetched{batches: make(map[loader.Dataset]*loader.Batch)}
	var mu sync.Mutex
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		log.Warnf("%v", err)
		result.Errors = append(result.Errors, err)
	}

	var g errgroup.Group
	for _, d := range []loader.Dataset{loader.Cases, loader.Vaccinations} {
		d := d
		g.Go(func() error {
			b, err := cfg.Source.Observations(ctx, d)
			if err != nil {
				fail(fmt.Errorf("fetch %s: %w", d, err))
				return nil
			}
			log.Debugf("Fetched %s: %d rows, %d dropped", d, b.Rows, b.Dropped)
			mu.Lock()
			f.batches[d] = b
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		body, err := cfg.Source.Boundaries(ctx)
		if err == nil {
			var b *geo.Boundaries
			if b, err = geo.ParseBoundaries(body); err == nil {
				mu.Lock()
				f.boundaries, f.regions = body, b.Len()
				mu.Unlock()
				return nil
			}
		}
		fail(fmt.Errorf("fetch boundaries: %w", err))
		return nil
	})
	_ = g.Wait()

	if len(f.batches) == 0 && f.boundaries == nil {
		return result, fmt.Errorf("nothing fetched: %w", errors.Join(result.Errors...))
	}

	if cfg.Lock != nil {
		if err := cfg.Lock.Lock(); err != nil {
			return result, err
		}
		defer func() {
			if err := cfg.Lock.Unlock(); err != nil {
				log.Warnf("%v", err)
			}
		}()
	}

	for _, d := range []loader.Dataset{loader.Cases, loader.Vaccinations} {
		b, ok := f.batches[d]
		if !ok {
			continue
		}
		if err := cfg.Store.ReplaceDataset(ctx, d, cfg.Sources.Location(d), b); err != nil {
			fail(fmt.Errorf("store %s: %w", d, err))
			continue
		}
		result.Loaded = append(result.Loaded, Loaded{Dataset: d, Rows: b.Rows, Kept: len(b.Observations), Dropped: b.Dropped})
		log.Infof("Stored %s: %d observations", d, len(b.Observations))
	}
	if f.boundaries != nil {
		if err := cfg.Store.SaveBoundaries(ctx, cfg.Sources.Boundaries, f.boundaries); err != nil {
			fail(fmt.Errorf("store boundaries: %w", err))
		} else {
			result.Boundaries = f.regions
			log.Infof("Stored boundaries: %d regions", f.regions)
		}
	}
	return result, nil
}

// ValidateSchedule checks a standard cron spec or descriptor such as
// "@every 6h".
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	return nil
}

// Schedule runs job on spec until ctx is cancelled, then waits for a running
// job to finish.
func Schedule(ctx context.Context, spec string, job func(context.Context)) error {
	if err := ValidateSchedule(spec); err != nil {
		return err
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

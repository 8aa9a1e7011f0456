// Package pagecreator fills the pages of a multi-page array concurrently.
//
// Pages are handed to a bounded errgroup, one task per page or per run of
// consecutive pages when there are many more pages than workers. Every task
// writes only its own pages and the generator is evaluated once per global
// index in increasing order within a page, so the result does not depend on
// how pages were partitioned.
//
// When a task fails the shared context is cancelled, all in-flight tasks are
// joined, and the first error is returned without any pages.
package pagecreator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/hupe1980/hugegraph/internal/pageutil"
	"github.com/hupe1980/hugegraph/resource"
	"golang.org/x/sync/errgroup"
)

// chunksPerWorker controls how finely pages are split once they outnumber workers.
const chunksPerWorker = 4

// ErrGeneratorPanic is wrapped by errors produced from a panicking generator.
var ErrGeneratorPanic = errors.New("pagecreator: generator panicked")

// Generator produces the value of one global index.
type Generator[T any] func(index int64) (T, error)

// IndexError reports the index whose generation failed.
type IndexError struct {
	Index int64
	cause error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("pagecreator: generator failed at index %d: %v", e.Index, e.cause)
}

func (e *IndexError) Unwrap() error { return e.cause }

// NewIndexError wraps err as the failure of index.
func NewIndexError(index int64, err error) *IndexError {
	return &IndexError{Index: index, cause: err}
}

// Config controls a construction.
type Config struct {
	// Concurrency is the maximum number of pages filled at the same time.
	// Values <= 0 use GOMAXPROCS.
	Concurrency int

	// Controller, if set, supplies worker slots and is charged MemoryBytes
	// before any page is allocated.
	Controller *resource.Controller

	// MemoryBytes is the reservation taken from Controller.
	MemoryBytes int64
}

// Pages is the result of a construction.
type Pages[T any] struct {
	Pages  [][]T
	Size   int64
	Layout pageutil.Layout
}

// Create allocates every page described by layout and fills it from gen.
func Create[T any](ctx context.Context, layout pageutil.Layout, gen Generator[T], cfg Config) (Pages[T], error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	rc := cfg.Controller
	if err := rc.AcquireMemory(ctx, cfg.MemoryBytes); err != nil {
		return Pages[T]{}, err
	}

	pages := make([][]T, layout.NumPages)
	chunk := ChunkSize(layout.NumPages, concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < layout.NumPages; start += chunk {
		end := min(start+chunk, layout.NumPages)
		g.Go(func() (err error) {
			if err := rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrGeneratorPanic, r)
				}
			}()

			for p := start; p < end; p++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				page, err := fillPage(layout, p, gen)
				if err != nil {
					return err
				}
				pages[p] = page
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		rc.ReleaseMemory(cfg.MemoryBytes)
		return Pages[T]{}, err
	}

	return Pages[T]{Pages: pages, Size: layout.Size, Layout: layout}, nil
}

func fillPage[T any](layout pageutil.Layout, p int, gen Generator[T]) ([]T, error) {
	page := make([]T, layout.PageLen(p))
	base := layout.PageBase(p)
	for i := range page {
		v, err := gen(base + int64(i))
		if err != nil {
			return nil, &IndexError{Index: base + int64(i), cause: err}
		}
		page[i] = v
	}
	return page, nil
}

// ChunkSize returns how many consecutive pages one task fills.
// It is 1 while pages do not outnumber workers.
func ChunkSize(numPages, concurrency int) int {
	if concurrency <= 0 || numPages <= concurrency {
		return 1
	}
	tasks := concurrency * chunksPerWorker
	return max(1, (numPages+tasks-1)/tasks)
}

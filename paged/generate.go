package paged

import (
	"context"
	"fmt"

	"github.com/hupe1980/hugegraph/internal/pagecreator"
	"github.com/hupe1980/hugegraph/internal/pageutil"
	"github.com/hupe1980/hugegraph/resource"
)

type options struct {
	concurrency     int
	controller      *resource.Controller
	singlePageLimit int64
}

// Option configures array construction.
type Option func(*options)

// WithConcurrency sets how many goroutines Generate may use. Values <= 1 build
// sequentially.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithController charges the array's memory and page-filling workers to rc.
// It applies to Generate; the reservation is returned by Release.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithSinglePageLimit lowers the size up to which an array stays in one block.
// Values <= 0 or above MaxSinglePageSize are ignored.
func WithSinglePageLimit(limit int64) Option {
	return func(o *options) {
		if limit > 0 && limit <= MaxSinglePageSize {
			o.singlePageLimit = limit
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		concurrency:     1,
		singlePageLimit: MaxSinglePageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GeneratorFunc produces the value of one index.
type GeneratorFunc[T any] func(index int64) (T, error)

// Generate builds an array whose element i is gen(i). The result equals New
// followed by SetAll for every concurrency level; paged arrays are filled by up
// to WithConcurrency goroutines using 32 KiB pages.
//
// If gen fails, all workers are joined and the first error is returned.
func Generate[T any](ctx context.Context, size int64, gen GeneratorFunc[T], opts ...Option) (*Array[T], error) {
	o := applyOptions(opts)

	if size > o.singlePageLimit && o.concurrency > 1 {
		estimate := estimateMemory[T](size, o.singlePageLimit, pageutil.PageSize32KiB)
		layout := pageutil.NewLayout(size, elementWidth[T](), pageutil.PageSize32KiB)
		res, err := pagecreator.Create(ctx, layout, pagecreator.Generator[T](gen), pagecreator.Config{
			Concurrency: o.concurrency,
			Controller:  o.controller,
			MemoryBytes: estimate,
		})
		if err != nil {
			return nil, err
		}
		return &Array[T]{b: fromPages(res.Pages, res.Layout), rc: o.controller, reserved: estimate}, nil
	}

	estimate := estimateMemory[T](size, o.singlePageLimit, pageutil.PageSize4KiB)
	if err := o.controller.AcquireMemory(ctx, estimate); err != nil {
		return nil, err
	}
	a := &Array[T]{b: newBacking[T](size, o.singlePageLimit), rc: o.controller, reserved: estimate}

	if err := fillSequential(ctx, a, gen); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

// fillSequential fills a in index order. A generator panic is returned as an
// error, as in a parallel build.
func fillSequential[T any](ctx context.Context, a *Array[T], gen GeneratorFunc[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", pagecreator.ErrGeneratorPanic, r)
		}
	}()

	c := a.b.newCursor()
	for c.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		block, base := c.Array(), c.Base()
		for i := c.Offset(); i < c.Limit(); i++ {
			v, err := gen(base + int64(i))
			if err != nil {
				return pagecreator.NewIndexError(base+int64(i), err)
			}
			block[i] = v
		}
	}
	return nil
}

// GenerateNumeric is Generate for numeric arrays.
func GenerateNumeric[T Number](ctx context.Context, size int64, gen GeneratorFunc[T], opts ...Option) (*NumericArray[T], error) {
	a, err := Generate(ctx, size, gen, opts...)
	if err != nil {
		return nil, err
	}
	return &NumericArray[T]{Array: *a}, nil
}

func mustGenerateNumeric[T Number](size int64, concurrency int, gen func(index int64) T) *NumericArray[T] {
	a, err := GenerateNumeric(context.Background(), size, func(i int64) (T, error) {
		return gen(i), nil
	}, WithConcurrency(concurrency))
	if err != nil {
		// Only a recovered generator panic gets here.
		panic(fmt.Errorf("paged: generate: %w", err))
	}
	return a
}

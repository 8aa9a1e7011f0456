package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/hupe1980/hugegraph/blobstore"
	"github.com/hupe1980/hugegraph/paged"
	"github.com/hupe1980/hugegraph/resource"
)

type sinkOptions struct {
	compression Compression
	controller  *resource.Controller
	logger      *slog.Logger
}

// Option configures a Writer or Reader.
type Option func(*sinkOptions)

// WithCompression sets the block compression of written snapshots.
// The default is LZ4.
func WithCompression(c Compression) Option {
	return func(o *sinkOptions) {
		o.compression = c
	}
}

// WithController rate limits snapshot IO through rc.
func WithController(rc *resource.Controller) Option {
	return func(o *sinkOptions) {
		o.controller = rc
	}
}

// WithLogger sets the logger for flush and load records.
func WithLogger(l *slog.Logger) Option {
	return func(o *sinkOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) sinkOptions {
	o := sinkOptions{
		compression: CompressionLZ4,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BlobPath returns the blob name of version of the series name.
func BlobPath(name string, version uint64) string {
	return path.Join(name, fmt.Sprintf("v%020d.snap", version))
}

// Writer exports arrays as versioned snapshots.
type Writer struct {
	store     blobstore.Store
	committer blobstore.Committer
	opts      sinkOptions
}

// NewWriter returns a writer storing blobs in store and versions in committer.
func NewWriter(store blobstore.Store, committer blobstore.Committer, opts ...Option) *Writer {
	return &Writer{store: store, committer: committer, opts: applyOptions(opts)}
}

// Flush writes arr as the next version of the series name and returns the
// committed version. Readers see the new version only after the commit.
func Flush[T Element](ctx context.Context, w *Writer, name string, arr *paged.NumericArray[T]) (uint64, error) {
	next, err := w.nextVersion(ctx, name)
	if err != nil {
		return 0, err
	}
	blob := BlobPath(name, next)

	pr, pw := io.Pipe()
	encoded := make(chan error, 1)
	go func() {
		err := Encode(resource.NewRateLimitedWriter(ctx, pw, w.opts.controller), arr, w.opts.compression)
		pw.CloseWithError(err)
		encoded <- err
	}()

	err = w.store.Put(ctx, blob, pr, -1)
	// Unblocks the encoder if the store stopped reading early. arr must not
	// be touched once Flush returns, so wait for it.
	pr.CloseWithError(err)
	encErr := <-encoded
	if err != nil {
		return 0, fmt.Errorf("snapshot: put %s: %w", blob, err)
	}
	if encErr != nil {
		return 0, fmt.Errorf("snapshot: encode %s: %w", blob, encErr)
	}

	version, err := w.committer.Commit(ctx, name, blob)
	if err != nil {
		return 0, fmt.Errorf("snapshot: commit %s: %w", blob, err)
	}

	w.opts.logger.Debug("snapshot flushed",
		"series", name,
		"version", version,
		"blob", blob,
		"elements", arr.Size(),
		"compression", w.opts.compression.String(),
	)
	return version, nil
}

func (w *Writer) nextVersion(ctx context.Context, name string) (uint64, error) {
	v, _, err := w.committer.Latest(ctx, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("snapshot: latest version of %s: %w", name, err)
	}
	return v + 1, nil
}

// Reader loads committed snapshots.
type Reader struct {
	store     blobstore.Store
	committer blobstore.Committer
	opts      sinkOptions
}

// NewReader returns a reader over the blobs and versions written by a Writer.
func NewReader(store blobstore.Store, committer blobstore.Committer, opts ...Option) *Reader {
	return &Reader{store: store, committer: committer, opts: applyOptions(opts)}
}

// Latest loads the newest committed version of the series name. It returns
// blobstore.ErrNotFound if nothing was committed.
func Latest[T Element](ctx context.Context, r *Reader, name string, opts ...paged.Option) (*paged.NumericArray[T], uint64, error) {
	version, blob, err := r.committer.Latest(ctx, name)
	if err != nil {
		return nil, 0, err
	}

	rc, err := r.store.Get(ctx, blob)
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot: get %s: %w", blob, err)
	}
	defer func() { _ = rc.Close() }()

	// The reader's controller is charged for the array unless opts name
	// another one.
	opts = append([]paged.Option{paged.WithController(r.opts.controller)}, opts...)
	arr, _, err := decode[T](ctx, resource.NewRateLimitedReader(ctx, rc, r.opts.controller), opts)
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot: decode %s: %w", blob, err)
	}

	r.opts.logger.Debug("snapshot loaded", "series", name, "version", version, "elements", arr.Size())
	return arr, version, nil
}

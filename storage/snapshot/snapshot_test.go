package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/rand"
	"runtime"
	"strings"
	"testing"

	"github.com/hupe1980/hugegraph/blobstore"
	"github.com/hupe1980/hugegraph/paged"
	"github.com/hupe1980/hugegraph/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var compressions = []Compression{CompressionNone, CompressionLZ4, CompressionZSTD}

func TestRoundTrip_Long(t *testing.T) {
	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			// More than one snapshot page, stored in a paged array.
			src := paged.NewLongArray(20_000, paged.WithSinglePageLimit(64))
			src.SetAll(func(i int64) int64 { return i*3 - 7 })

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, c))

			got, h, err := Decode[int64](bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, KindLong, h.Kind)
			assert.Equal(t, c, h.Compression)
			assert.Equal(t, int64(20_000), h.Count)
			assert.Equal(t, uint32(3), h.PageCount)
			assert.Equal(t, src.ToSlice(), got.ToSlice())
		})
	}
}

func TestRoundTrip_DoubleAndFloat(t *testing.T) {
	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			d := paged.DoubleArrayOf(0.5, -1.25, 3e10, 0)
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, d, c))
			gotD, err := DecodeDouble(&buf)
			require.NoError(t, err)
			assert.Equal(t, d.ToSlice(), gotD.ToSlice())

			f := paged.NewFloatArray(17_000)
			f.SetAll(func(i int64) float32 { return float32(i) / 4 })
			buf.Reset()
			require.NoError(t, Encode(&buf, f, c))
			gotF, err := DecodeFloat(&buf)
			require.NoError(t, err)
			assert.Equal(t, f.ToSlice(), gotF.ToSlice())
		})
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, paged.NewLongArray(0), CompressionZSTD))
	assert.Equal(t, headerSize, buf.Len())

	got, err := DecodeLong(&buf)
	require.NoError(t, err)
	assert.Zero(t, got.Size())
}

func TestEncode_RandomDataStoredRaw(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := paged.NewLongArray(1000)
	src.SetAll(func(int64) int64 { return rng.Int63() })

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, CompressionLZ4))

	b := buf.Bytes()[headerSize:]
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(b[0:]))
	assert.Zero(t, binary.LittleEndian.Uint32(b[4:]), "incompressible page is stored raw")

	got, err := DecodeLong(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, src.ToSlice(), got.ToSlice())
}

func TestEncode_CompressesRepetitiveData(t *testing.T) {
	src := paged.NewDoubleArray(8192)
	src.Fill(1.0)

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, src, c))
		assert.Less(t, buf.Len(), 8192*8/10, c.String())
	}
}

func encoded(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, paged.LongArrayOf(1, 2, 3), CompressionLZ4))
	return buf.Bytes()
}

func TestDecode_Errors(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		b := encoded(t)
		copy(b, "NOPE")
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		b := encoded(t)
		binary.LittleEndian.PutUint16(b[4:], 99)
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		b := encoded(t)
		b[6] = 42
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("PageCountMismatch", func(t *testing.T) {
		b := encoded(t)
		binary.LittleEndian.PutUint32(b[20:], 5)
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("KindMismatch", func(t *testing.T) {
		_, err := DecodeDouble(bytes.NewReader(encoded(t)))
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("Truncated", func(t *testing.T) {
		b := encoded(t)
		_, err := DecodeLong(bytes.NewReader(b[:len(b)-3]))
		assert.Error(t, err)

		_, err = DecodeLong(bytes.NewReader(b[:10]))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("CompressedNotSmaller", func(t *testing.T) {
		b := encoded(t)
		binary.LittleEndian.PutUint32(b[headerSize+4:], 24)
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)

		binary.LittleEndian.PutUint32(b[headerSize+4:], math.MaxUint32)
		_, err = DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("OversizedPage", func(t *testing.T) {
		b := encoded(t)
		binary.LittleEndian.PutUint32(b[16:], 1<<20)
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("WrongBlockLength", func(t *testing.T) {
		b := encoded(t)
		binary.LittleEndian.PutUint32(b[headerSize:], 16)
		_, err := DecodeLong(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestReadHeader(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(encoded(t)))
	require.NoError(t, err)
	assert.Equal(t, Version, h.Version)
	assert.Equal(t, KindLong, h.Kind)
	assert.Equal(t, int64(3), h.Count)
	assert.Equal(t, uint32(8192), h.PageSize)
	assert.Equal(t, uint32(1), h.PageCount)
}

func TestKindAndCompressionStrings(t *testing.T) {
	assert.Equal(t, "long", KindOf[int64]().String())
	assert.Equal(t, "double", KindOf[float64]().String())
	assert.Equal(t, "float", KindOf[float32]().String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
	assert.Equal(t, "Compression(7)", Compression(7).String())
}

func TestFlushAndLatest(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	committer := blobstore.NewMemoryCommitter()
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})

	w := NewWriter(store, committer, WithCompression(CompressionZSTD), WithController(rc))
	r := NewReader(store, committer, WithController(rc))

	_, _, err := Latest[float64](ctx, r, "ranks")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	first := paged.DoubleArrayOf(0.25, 0.25, 0.5)
	v, err := Flush(ctx, w, "ranks", first)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	second := paged.DoubleArrayOf(0.1, 0.2, 0.7)
	v, err = Flush(ctx, w, "ranks", second)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	got, version, err := Latest[float64](ctx, r, "ranks")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, second.ToSlice(), got.ToSlice())

	names, err := store.List(ctx, "ranks/")
	require.NoError(t, err)
	assert.Equal(t, []string{BlobPath("ranks", 1), BlobPath("ranks", 2)}, names)
	assert.Equal(t, "ranks/v00000000000000000002.snap", BlobPath("ranks", 2))
}

func TestLatest_KindMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	committer := blobstore.NewMemoryCommitter()

	_, err := Flush(ctx, NewWriter(store, committer), "labels", paged.LongArrayOf(1, 2))
	require.NoError(t, err)

	_, _, err = Latest[float32](ctx, NewReader(store, committer), "labels")
	assert.ErrorIs(t, err, ErrKindMismatch)
}

type failingStore struct {
	blobstore.Store
	err error
}

func (f failingStore) Put(_ context.Context, _ string, r io.Reader, _ int64) error {
	// Read a little, then stop, leaving the encoder blocked on the pipe.
	_, _ = io.CopyN(io.Discard, r, 4)
	return f.err
}

func TestFlush_PutFailureIsNotCommitted(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk full")
	committer := blobstore.NewMemoryCommitter()
	w := NewWriter(failingStore{Store: blobstore.NewMemoryStore(), err: cause}, committer)

	arr := paged.NewLongArray(50_000)
	_, err := Flush(ctx, w, "labels", arr)
	require.ErrorIs(t, err, cause)
	assert.True(t, strings.Contains(err.Error(), "labels/"))

	_, _, err = committer.Latest(ctx, "labels")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestFlush_ShortReadIsNotCommitted(t *testing.T) {
	ctx := context.Background()
	committer := blobstore.NewMemoryCommitter()
	// Stops reading early but reports success.
	w := NewWriter(failingStore{Store: blobstore.NewMemoryStore()}, committer)

	arr := paged.NewLongArray(50_000)
	arr.SetAll(func(i int64) int64 { return i })
	_, err := Flush(ctx, w, "labels", arr)
	require.ErrorIs(t, err, io.ErrClosedPipe)

	_, _, err = committer.Latest(ctx, "labels")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

// hugeHeader returns the header of a double snapshot of count elements.
func hugeHeader(count int64) Header {
	pageSize := uint32(pageBytes / 8)
	return Header{
		Version:     Version,
		Kind:        KindDouble,
		Compression: CompressionNone,
		Count:       count,
		PageSize:    pageSize,
		PageCount:   uint32((count + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func TestDecode_TruncatedHugeHeaderAllocatesNothing(t *testing.T) {
	h := hugeHeader(1 << 27)
	b := append(h.marshal(), 0, 0, 0, 0)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := DecodeDouble(bytes.NewReader(b))
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, ErrCorrupt)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20), "no array for the claimed count")
}

func TestLatest_ChargesReaderController(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	committer := blobstore.NewMemoryCommitter()

	// A valid first page behind a header claiming 1 GiB of elements.
	h := hugeHeader(1 << 27)
	b := h.marshal()
	b = binary.LittleEndian.AppendUint32(b, pageBytes)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = append(b, make([]byte, pageBytes)...)
	require.NoError(t, store.Put(ctx, "ranks/v1.snap", bytes.NewReader(b), int64(len(b))))
	_, err := committer.Commit(ctx, "ranks", "ranks/v1.snap")
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	_, _, err = Latest[float64](ctx, NewReader(store, committer, WithController(rc)), "ranks")
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())

	// Within the limit the array stays charged until released.
	arr := paged.DoubleArrayOf(0.5, 0.25)
	_, err = Flush(ctx, NewWriter(store, committer), "small", arr)
	require.NoError(t, err)
	got, _, err := Latest[float64](ctx, NewReader(store, committer, WithController(rc)), "small")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25}, got.ToSlice())
	assert.Equal(t, got.SizeOf(), rc.MemoryUsage())
	got.Release()
	assert.Zero(t, rc.MemoryUsage())
}

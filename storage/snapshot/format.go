// Package snapshot encodes numeric paged arrays into a compact, compressed
// binary form and exports them as versioned blobs.
//
// A snapshot is a 32-byte header followed by one block per page:
//
//	magic "HGSN" | version u16 | kind u8 | compression u8 | count u64 |
//	page size u32 | page count u32 | reserved u64
//
// All integers are little endian. Each block is
// [uncompressed u32][compressed u32][data]; a compressed length of 0 marks a
// page stored raw.
package snapshot

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/hupe1980/hugegraph/internal/conv"
	"github.com/hupe1980/hugegraph/internal/pagecreator"
	"github.com/hupe1980/hugegraph/internal/pageutil"
	"github.com/hupe1980/hugegraph/paged"
)

const (
	// Magic opens every snapshot.
	Magic = "HGSN"
	// Version is the format version written by Encode.
	Version uint16 = 1

	headerSize = 32

	// pageBytes is the uncompressed size of a full snapshot page.
	pageBytes = 1 << 16
)

var (
	// ErrCorrupt is returned when snapshot bytes are malformed.
	ErrCorrupt = errors.New("snapshot: corrupt data")

	// ErrUnsupportedVersion is returned for snapshots of an unknown format version.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrKindMismatch is returned when decoding a snapshot into an array of
	// another element type.
	ErrKindMismatch = errors.New("snapshot: element kind mismatch")
)

// Kind is the element type of a snapshot.
type Kind uint8

const (
	KindLong   Kind = 1
	KindDouble Kind = 2
	KindFloat  Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) width() int {
	if k == KindFloat {
		return 4
	}
	return 8
}

// Element is the set of element types a snapshot can hold.
type Element interface {
	int64 | float64 | float32
}

// KindOf returns the snapshot kind of T.
func KindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case float64:
		return KindDouble
	case float32:
		return KindFloat
	default:
		return KindLong
	}
}

// Header describes an encoded snapshot.
type Header struct {
	Version     uint16
	Kind        Kind
	Compression Compression
	Count       int64
	PageSize    uint32
	PageCount   uint32
}

func (h *Header) marshal() []byte {
	b := make([]byte, 0, headerSize)
	b = append(b, Magic...)
	b = binary.LittleEndian.AppendUint16(b, h.Version)
	b = append(b, byte(h.Kind), byte(h.Compression))
	b = binary.LittleEndian.AppendUint64(b, uint64(h.Count))
	b = binary.LittleEndian.AppendUint32(b, h.PageSize)
	b = binary.LittleEndian.AppendUint32(b, h.PageCount)
	return binary.LittleEndian.AppendUint64(b, 0)
}

func (h *Header) unmarshal(b []byte) error {
	if string(b[:4]) != Magic {
		return fmt.Errorf("%w: bad magic %q", ErrCorrupt, b[:4])
	}
	h.Version = binary.LittleEndian.Uint16(b[4:])
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Kind = Kind(b[6])
	h.Compression = Compression(b[7])
	count, err := conv.Uint64ToInt64(binary.LittleEndian.Uint64(b[8:]))
	if err != nil {
		return fmt.Errorf("%w: element count: %w", ErrCorrupt, err)
	}
	h.Count = count
	h.PageSize = binary.LittleEndian.Uint32(b[16:])
	h.PageCount = binary.LittleEndian.Uint32(b[20:])
	return h.validate()
}

func (h *Header) validate() error {
	if h.Kind < KindLong || h.Kind > KindFloat {
		return fmt.Errorf("%w: unknown kind %s", ErrCorrupt, h.Kind)
	}
	if h.Compression > CompressionZSTD {
		return fmt.Errorf("%w: unknown compression %s", ErrCorrupt, h.Compression)
	}
	if h.PageSize == 0 || h.PageSize&(h.PageSize-1) != 0 {
		return fmt.Errorf("%w: page size %d is not a power of two", ErrCorrupt, h.PageSize)
	}
	if int64(h.PageSize)*int64(h.Kind.width()) > pageBytes {
		return fmt.Errorf("%w: page size %d exceeds %d bytes", ErrCorrupt, h.PageSize, pageBytes)
	}
	if want := pageutil.NumPages(h.Count, int64(h.PageSize)); want != int64(h.PageCount) {
		return fmt.Errorf("%w: %d pages for %d elements, want %d", ErrCorrupt, h.PageCount, h.Count, want)
	}
	return nil
}

// Encode writes arr to w as a snapshot.
func Encode[T Element](w io.Writer, arr *paged.NumericArray[T], c Compression) error {
	kind := KindOf[T]()
	pageSize := pageutil.PageSizeFor(pageBytes, kind.width())
	layout := pageutil.NewLayoutWithPageSize(arr.Size(), pageSize)

	pageCount, err := conv.IntToUint32(layout.NumPages)
	if err != nil {
		return fmt.Errorf("snapshot: page count: %w", err)
	}
	h := Header{
		Version:     Version,
		Kind:        kind,
		Compression: c,
		Count:       arr.Size(),
		PageSize:    uint32(pageSize),
		PageCount:   pageCount,
	}
	if err := h.validate(); err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, pageBytes)
	if _, err := bw.Write(h.marshal()); err != nil {
		return err
	}

	raw := make([]byte, 0, pageBytes)
	var block []byte
	cursor := arr.NewCursor()
	for p := 0; p < layout.NumPages; p++ {
		raw = raw[:0]
		base := layout.PageBase(p)
		cursor = arr.InitCursorRange(cursor, base, base+int64(layout.PageLen(p)))
		for cursor.Next() {
			raw = appendValues(raw, cursor.Array()[cursor.Offset():cursor.Limit()], kind)
		}

		block, err = appendBlock(block[:0], raw, c)
		if err != nil {
			return err
		}
		if _, err := bw.Write(block); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func appendValues[T Element](dst []byte, values []T, kind Kind) []byte {
	switch kind {
	case KindLong:
		for _, v := range values {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(int64(v)))
		}
	case KindDouble:
		for _, v := range values {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(float64(v)))
		}
	case KindFloat:
		for _, v := range values {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
		}
	}
	return dst
}

// ReadHeader reads and validates the header at the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	var h Header
	if err := h.unmarshal(buf[:]); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Decode reads a snapshot of element type T from r into a new array.
//
// The array is built with paged.Generate, so a controller passed through
// opts is charged before the array is allocated. The first page is read and
// checked before that.
func Decode[T Element](r io.Reader, opts ...paged.Option) (*paged.NumericArray[T], Header, error) {
	return decode[T](context.Background(), r, opts)
}

func decode[T Element](ctx context.Context, r io.Reader, opts []paged.Option) (*paged.NumericArray[T], Header, error) {
	br := bufio.NewReaderSize(r, pageBytes)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, Header{}, err
	}
	if want := KindOf[T](); h.Kind != want {
		return nil, h, fmt.Errorf("%w: snapshot holds %s, want %s", ErrKindMismatch, h.Kind, want)
	}

	pr := &pageReader[T]{
		br:     br,
		h:      h,
		layout: pageutil.NewLayoutWithPageSize(h.Count, int(h.PageSize)),
		width:  h.Kind.width(),
		page:   -1,
	}
	if pr.layout.NumPages > 0 {
		if err := pr.load(0); err != nil {
			return nil, h, err
		}
	}

	// One goroutine: values come off the stream in index order.
	opts = append(slices.Clip(opts), paged.WithConcurrency(1))
	arr, err := paged.GenerateNumeric(ctx, h.Count, pr.value, opts...)
	if err != nil {
		var ie *pagecreator.IndexError
		if errors.As(err, &ie) {
			err = ie.Unwrap()
		}
		return nil, h, err
	}
	return arr, h, nil
}

// pageReader decodes the blocks of a snapshot one page at a time.
type pageReader[T Element] struct {
	br      *bufio.Reader
	h       Header
	layout  pageutil.Layout
	width   int
	page    int
	raw     []byte
	payload []byte
}

// value returns element i. Elements must be requested in index order.
func (pr *pageReader[T]) value(i int64) (T, error) {
	if p := int(pageutil.PageIndex(i, pr.layout.Shift)); p != pr.page {
		if p != pr.page+1 {
			var zero T
			return zero, fmt.Errorf("%w: page %d requested after page %d", ErrCorrupt, p, pr.page)
		}
		if err := pr.load(p); err != nil {
			var zero T
			return zero, err
		}
	}
	off := int(pageutil.IndexInPage(i, pr.layout.Mask)) * pr.width
	return readValue[T](pr.raw[off:], pr.h.Kind), nil
}

func (pr *pageReader[T]) load(p int) error {
	var blockHeader [blockHeaderSize]byte
	if _, err := io.ReadFull(pr.br, blockHeader[:]); err != nil {
		return fmt.Errorf("%w: page %d header: %w", ErrCorrupt, p, err)
	}
	rawLen := int(binary.LittleEndian.Uint32(blockHeader[0:]))
	compLen := int(binary.LittleEndian.Uint32(blockHeader[4:]))
	if want := pr.layout.PageLen(p) * pr.width; rawLen != want {
		return fmt.Errorf("%w: page %d holds %d bytes, want %d", ErrCorrupt, p, rawLen, want)
	}
	// Encode stores a block compressed only when that makes it smaller.
	if compLen >= rawLen && compLen > 0 {
		return fmt.Errorf("%w: page %d compressed to %d bytes, raw is %d", ErrCorrupt, p, compLen, rawLen)
	}

	var err error
	pr.raw = grow(pr.raw, rawLen)
	if compLen == 0 {
		_, err = io.ReadFull(pr.br, pr.raw)
	} else {
		pr.payload = grow(pr.payload, compLen)
		if _, err = io.ReadFull(pr.br, pr.payload); err == nil {
			err = decodeBlock(pr.raw, pr.payload, pr.h.Compression)
		}
	}
	if err != nil {
		return fmt.Errorf("snapshot: page %d: %w", p, err)
	}
	pr.page = p
	return nil
}

func readValue[T Element](b []byte, kind Kind) T {
	switch kind {
	case KindDouble:
		return T(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case KindFloat:
		return T(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return T(int64(binary.LittleEndian.Uint64(b)))
	}
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

// DecodeLong decodes a long snapshot.
func DecodeLong(r io.Reader, opts ...paged.Option) (*paged.LongArray, error) {
	arr, _, err := Decode[int64](r, opts...)
	return arr, err
}

// DecodeDouble decodes a double snapshot.
func DecodeDouble(r io.Reader, opts ...paged.Option) (*paged.DoubleArray, error) {
	arr, _, err := Decode[float64](r, opts...)
	return arr, err
}

// DecodeFloat decodes a float snapshot.
func DecodeFloat(r io.Reader, opts ...paged.Option) (*paged.FloatArray, error) {
	arr, _, err := Decode[float32](r, opts...)
	return arr, err
}

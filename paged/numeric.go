package paged

// Number is the set of element types that support AddTo.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NumericArray is an Array of numbers.
type NumericArray[T Number] struct {
	Array[T]
}

// LongArray is a paged array of int64.
type LongArray = NumericArray[int64]

// DoubleArray is a paged array of float64.
type DoubleArray = NumericArray[float64]

// FloatArray is a paged array of float32.
type FloatArray = NumericArray[float32]

// NewNumeric returns a zero-filled numeric array.
func NewNumeric[T Number](size int64, opts ...Option) *NumericArray[T] {
	return &NumericArray[T]{Array: *New[T](size, opts...)}
}

// NumericOf returns a numeric array holding a copy of values.
func NumericOf[T Number](values ...T) *NumericArray[T] {
	return &NumericArray[T]{Array: *Of(values...)}
}

// AddTo adds delta to the element at index.
func (a *NumericArray[T]) AddTo(index int64, delta T) {
	checkIndex("add", index, a.b.size())
	*a.b.ptr(index) += delta
}

// CopyTo copies the first length elements into dest; see Array.CopyTo.
func (a *NumericArray[T]) CopyTo(dest *NumericArray[T], length int64) {
	a.Array.CopyTo(&dest.Array, length)
}

// CopyOf returns a resized copy; see Array.CopyOf.
func (a *NumericArray[T]) CopyOf(newLength int64) *NumericArray[T] {
	return &NumericArray[T]{Array: *a.Array.CopyOf(newLength)}
}

// NewLongArray returns a zero-filled LongArray.
func NewLongArray(size int64, opts ...Option) *LongArray { return NewNumeric[int64](size, opts...) }

// NewDoubleArray returns a zero-filled DoubleArray.
func NewDoubleArray(size int64, opts ...Option) *DoubleArray {
	return NewNumeric[float64](size, opts...)
}

// NewFloatArray returns a zero-filled FloatArray.
func NewFloatArray(size int64, opts ...Option) *FloatArray { return NewNumeric[float32](size, opts...) }

// LongArrayOf returns a LongArray holding a copy of values.
func LongArrayOf(values ...int64) *LongArray { return NumericOf(values...) }

// DoubleArrayOf returns a DoubleArray holding a copy of values.
func DoubleArrayOf(values ...float64) *DoubleArray { return NumericOf(values...) }

// FloatArrayOf returns a FloatArray holding a copy of values.
func FloatArrayOf(values ...float32) *FloatArray { return NumericOf(values...) }

// NewLongArrayWithGenerator is New followed by SetAll(gen), built with up to
// concurrency goroutines when the array is paged.
func NewLongArrayWithGenerator(size int64, concurrency int, gen func(index int64) int64) *LongArray {
	return mustGenerateNumeric(size, concurrency, gen)
}

// NewDoubleArrayWithGenerator is the DoubleArray variant of NewLongArrayWithGenerator.
func NewDoubleArrayWithGenerator(size int64, concurrency int, gen func(index int64) float64) *DoubleArray {
	return mustGenerateNumeric(size, concurrency, gen)
}

// NewFloatArrayWithGenerator is the FloatArray variant of NewLongArrayWithGenerator.
func NewFloatArrayWithGenerator(size int64, concurrency int, gen func(index int64) float32) *FloatArray {
	return mustGenerateNumeric(size, concurrency, gen)
}

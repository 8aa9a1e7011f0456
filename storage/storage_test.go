package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRuntime struct {
	mock.Mock
}

func (m *mockRuntime) Init(ctx *StorageContext) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRuntime) Read(ctx *StorageContext, id int64) (Value, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Value), args.Error(1)
}

func (m *mockRuntime) Write(ctx *StorageContext, id int64, v Value) error {
	return m.Called(ctx, id, v).Error(0)
}

func (m *mockRuntime) Flush(ctx *StorageContext) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRuntime) Finalize(ctx *StorageContext) error {
	return m.Called(ctx).Error(0)
}

func testDescriptor() *descriptor.StorageDescriptor {
	return &descriptor.StorageDescriptor{ID: 3, Name: "ranks", Backend: descriptor.BackendHugeArray, ValueType: descriptor.ValueDouble}
}

func TestValue(t *testing.T) {
	assert.True(t, None.IsNone())
	assert.Equal(t, "none", None.String())

	l := LongValue(-7)
	assert.False(t, l.IsNone())
	assert.Equal(t, descriptor.ValueLong, l.Type())
	assert.Equal(t, int64(-7), l.Long())
	assert.Zero(t, l.Double())

	assert.Equal(t, 2.5, DoubleValue(2.5).Double())
	assert.Equal(t, float32(1.25), FloatValue(1.25).Float())
	assert.Equal(t, "x", ObjectValue("x").Object())
	assert.Nil(t, LongValue(1).Object())
	assert.Equal(t, "double(2.5)", DoubleValue(2.5).String())
	assert.Equal(t, LongValue(4), LongValue(4))
}

func TestError(t *testing.T) {
	cause := errors.New("disk")
	err := ReadFailed(testDescriptor(), 12, "", cause)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `storage: read failed: storage 3 "ranks" node 12: disk`, err.Error())

	assert.Equal(t, "storage: descriptor missing: storage 9", DescriptorMissing(9).Error())
	assert.ErrorIs(t, FlushFailed(nil, nil), ErrFlushFailed)
}

func TestAccessor(t *testing.T) {
	sctx := NewStorageContext(nil, nil, testDescriptor())
	rt := &mockRuntime{}
	rt.On("Read", sctx, int64(1)).Return(DoubleValue(1.5), nil)
	rt.On("Write", sctx, int64(1), DoubleValue(4)).Return(nil)
	rt.On("Read", sctx, int64(2)).Return(None, ReadFailed(sctx.Storage, 2, "", nil))

	acc := NewAccessor(rt)

	v, err := acc.Access(sctx, 1, AccessRead, None)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v.Double())

	v, err = acc.Access(sctx, 1, AccessWrite, DoubleValue(4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Double())

	v, err = acc.Access(sctx, 1, AccessReadWrite, DoubleValue(4))
	require.NoError(t, err)
	assert.Equal(t, 1.5, v.Double(), "read-write returns the previous value")

	_, err = acc.Access(sctx, 2, AccessReadWrite, DoubleValue(4))
	assert.ErrorIs(t, err, ErrReadFailed)

	_, err = acc.Access(sctx, 1, AccessMode(9), None)
	assert.ErrorIs(t, err, ErrBackend)

	rt.AssertNumberOfCalls(t, "Write", 2)
}

func TestSession(t *testing.T) {
	sctx := NewStorageContext(nil, nil, testDescriptor())

	t.Run("success flushes and finalizes", func(t *testing.T) {
		rt := &mockRuntime{}
		rt.On("Init", mock.Anything).Return(nil).Once()
		rt.On("Flush", mock.Anything).Return(nil).Once()
		rt.On("Finalize", mock.Anything).Return(nil).Once()

		var called bool
		err := Session(context.Background(), rt, sctx, func(*StorageContext) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		rt.AssertExpectations(t)
	})

	t.Run("init failure finalizes without flush", func(t *testing.T) {
		rt := &mockRuntime{}
		rt.On("Init", mock.Anything).Return(errors.New("alloc")).Once()
		rt.On("Finalize", mock.Anything).Return(nil).Once()

		err := Session(context.Background(), rt, sctx, func(*StorageContext) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, ErrInitFailed)
		rt.AssertExpectations(t)
		rt.AssertNotCalled(t, "Flush", mock.Anything)
	})

	t.Run("fn and finalize failures are joined", func(t *testing.T) {
		rt := &mockRuntime{}
		rt.On("Init", mock.Anything).Return(nil).Once()
		rt.On("Finalize", mock.Anything).Return(errors.New("close")).Once()

		fnErr := WriteFailed(sctx.Storage, 4, "full", nil)
		err := Session(context.Background(), rt, sctx, func(*StorageContext) error { return fnErr })
		assert.ErrorIs(t, err, ErrWriteFailed)
		assert.ErrorIs(t, err, ErrFinalizeFailed)
		rt.AssertNotCalled(t, "Flush", mock.Anything)
	})

	t.Run("flush failure", func(t *testing.T) {
		rt := &mockRuntime{}
		rt.On("Init", mock.Anything).Return(nil)
		rt.On("Flush", mock.Anything).Return(errors.New("upload"))
		rt.On("Finalize", mock.Anything).Return(nil)

		err := Session(context.Background(), rt, sctx, func(*StorageContext) error { return nil })
		assert.ErrorIs(t, err, ErrFlushFailed)
	})
}

func TestRegistry(t *testing.T) {
	descs := descriptor.NewRegistry()
	_, err := descs.RegisterStorage(*testDescriptor())
	require.NoError(t, err)
	_, err = descs.RegisterStorage(descriptor.StorageDescriptor{ID: 4, Name: "orphan"})
	require.NoError(t, err)

	r := NewRegistry(descs)
	first, second := &mockRuntime{}, &mockRuntime{}
	assert.True(t, r.RegisterStorageFactory(3, func(*descriptor.StorageDescriptor) (StorageRuntime, error) { return first, nil }))
	assert.False(t, r.RegisterStorageFactory(3, func(*descriptor.StorageDescriptor) (StorageRuntime, error) { return second, nil }))
	assert.Equal(t, []uint32{3}, r.IDs())

	rt, err := r.InstantiateStorageFromDescriptor(3)
	require.NoError(t, err)
	assert.Same(t, first, rt)

	_, err = r.InstantiateStorageFromDescriptor(77)
	assert.ErrorIs(t, err, ErrDescriptorMissing)

	_, err = r.InstantiateStorageFromDescriptor(4)
	require.ErrorIs(t, err, ErrInitFailed)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "orphan", se.DescriptorName)

	cause := errors.New("bad")
	r.RegisterStorageFactory(4, func(*descriptor.StorageDescriptor) (StorageRuntime, error) { return nil, cause })
	_, err = r.InstantiateStorageFromDescriptor(4)
	assert.ErrorIs(t, err, cause)
	assert.True(t, r.Has(4))
}

func TestAccessModeString(t *testing.T) {
	assert.Equal(t, "read-write", AccessReadWrite.String())
	assert.Equal(t, "AccessMode(5)", AccessMode(5).String())
}

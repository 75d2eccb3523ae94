package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockCacheManager is a testify mock of CacheManager.
type mockCacheManager[K comparable, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type renderInput struct {
	Color string
	Width int
}

func render(calls *int) func(context.Context, renderInput) (frame, error) {
	return func(_ context.Context, in renderInput) (frame, error) {
		*calls++
		return frame{Width: in.Width, View: in.Color}, nil
	}
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	m := &mockCacheManager[string, frame]{}
	calls := 0
	rt := NewReadThroughCache[string, frame, renderInput](m, render(&calls), true)

	got, err := rt.Get(context.Background(), "white:40", renderInput{Color: "white", Width: 40}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, frame{Width: 40, View: "white"}, got)

	got, err = rt.GetWithRefresh(context.Background(), "white:40", renderInput{Color: "white", Width: 40}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, frame{Width: 40, View: "white"}, got)

	require.Equal(t, 2, calls)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	m := &mockCacheManager[string, frame]{}
	m.On("Get", mock.Anything, "white:40").Return(frame{View: "cached"}, true)
	calls := 0
	rt := NewReadThroughCache[string, frame, renderInput](m, render(&calls), false)

	got, err := rt.Get(context.Background(), "white:40", renderInput{Color: "white", Width: 40}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", got.View)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_Get_EmptyCache(t *testing.T) {
	m := &mockCacheManager[string, frame]{}
	m.On("Get", mock.Anything, "off:20").Return(frame{}, false)
	m.On("Set", mock.Anything, "off:20", frame{Width: 20, View: "off"}, time.Minute).Return()
	calls := 0
	rt := NewReadThroughCache[string, frame, renderInput](m, render(&calls), false)

	got, err := rt.Get(context.Background(), "off:20", renderInput{Color: "off", Width: 20}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, frame{Width: 20, View: "off"}, got)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_Get_RenderError(t *testing.T) {
	m := &mockCacheManager[string, frame]{}
	m.On("Get", mock.Anything, "off:20").Return(frame{}, false)
	boom := errors.New("boom")
	rt := NewReadThroughCache[string, frame, renderInput](m, func(context.Context, renderInput) (frame, error) {
		return frame{}, boom
	}, false)

	_, err := rt.Get(context.Background(), "off:20", renderInput{}, time.Minute)
	require.ErrorIs(t, err, boom)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh_WithValueInCache(t *testing.T) {
	m := &mockCacheManager[string, frame]{}
	m.On("GetWithRefresh", mock.Anything, "rainbow:40", time.Hour).Return(frame{View: "cached"}, true)
	calls := 0
	rt := NewReadThroughCache[string, frame, renderInput](m, render(&calls), false)

	got, err := rt.GetWithRefresh(context.Background(), "rainbow:40", renderInput{}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, "cached", got.View)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_GetWithRefresh_EmptyCache(t *testing.T) {
	m := &mockCacheManager[string, frame]{}
	m.On("GetWithRefresh", mock.Anything, "rainbow:40", time.Hour).Return(frame{}, false)
	m.On("Set", mock.Anything, "rainbow:40", frame{Width: 40, View: "rainbow"}, time.Hour).Return()
	calls := 0
	rt := NewReadThroughCache[string, frame, renderInput](m, render(&calls), false)

	got, err := rt.GetWithRefresh(context.Background(), "rainbow:40", renderInput{Color: "rainbow", Width: 40}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, "rainbow", got.View)
	m.AssertExpectations(t)
}

func TestReadThroughCache_InMemory(t *testing.T) {
	calls := 0
	rt := NewReadThroughCache[frameKey, frame, renderInput](newFrames(), render(&calls), false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := rt.Get(ctx, "white:40", renderInput{Color: "white", Width: 40}, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls)

	require.NoError(t, rt.Invalidate(ctx))
	_, err := rt.Get(ctx, "white:40", renderInput{Color: "white", Width: 40}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/infrastructure/redisstore"
)

func newStorage(t *testing.T) (*redisstore.Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := redisstore.New(redisstore.NewClient(mr.Addr(), "", 0), "limiter:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStorage_SetGetDelete(t *testing.T) {
	s, mr := newStorage(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Set("ip:10.0.0.1", []byte("3"), time.Minute))
	assert.True(t, mr.Exists("limiter:ip:10.0.0.1"), "la clave debe llevar el prefijo")

	val, err := s.Get("ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)

	require.NoError(t, s.Delete("ip:10.0.0.1"))
	val, err = s.Get("ip:10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestStorage_Expiration(t *testing.T) {
	s, mr := newStorage(t)
	require.NoError(t, s.Set("k", []byte("1"), time.Second))

	mr.FastForward(2 * time.Second)
	val, err := s.Get("k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestStorage_ResetKeepsForeignKeys(t *testing.T) {
	s, mr := newStorage(t)
	require.NoError(t, mr.Set("other:key", "x"))
	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Set("b", []byte("2"), 0))

	require.NoError(t, s.Reset())
	assert.False(t, mr.Exists("limiter:a"))
	assert.False(t, mr.Exists("limiter:b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestStorage_EmptyKeyIsNoop(t *testing.T) {
	s, _ := newStorage(t)
	assert.NoError(t, s.Set("", []byte("1"), 0))
	val, err := s.Get("")
	assert.NoError(t, err)
	assert.Nil(t, val)
}

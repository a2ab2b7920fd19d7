package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTest(t *testing.T) (Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "test:"), mr
}

func drivers(t *testing.T) map[string]Storage {
	r, _ := newRedisTest(t)
	return map[string]Storage{
		"file":  NewFile(afero.NewMemMapFs(), "/data/storage.json"),
		"redis": r,
	}
}

func Test_StorageContract(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)
			ctx := context.Background()

			_, err := s.Get(ctx, "access")
			assert.ErrorIs(err, ErrNotFound)

			require.NoError(s.Put(ctx, map[string]string{"access": "a", "refresh": "r"}))

			v, err := s.Get(ctx, "access")
			require.NoError(err)
			assert.Equal("a", v)

			v, err = s.Get(ctx, "refresh")
			require.NoError(err)
			assert.Equal("r", v)

			require.NoError(s.Delete(ctx, "access", "refresh"))
			_, err = s.Get(ctx, "refresh")
			assert.ErrorIs(err, ErrNotFound)

			// deleting absent keys is fine
			require.NoError(s.Delete(ctx, "access", "refresh"))
			require.NoError(s.Delete(ctx))
		})
	}
}

func Test_FileSurvivesReopen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	require.NoError(NewFile(fs, "/data/storage.json").Put(ctx, map[string]string{"access": "a"}))

	v, err := NewFile(fs, "/data/storage.json").Get(ctx, "access")
	require.NoError(err)
	assert.Equal(t, "a", v)

	exists, err := afero.Exists(fs, "/data/storage.json.tmp")
	require.NoError(err)
	assert.False(t, exists)
}

func Test_FileIsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/storage.json", 0o700))

	_, err := NewFile(fs, "/data/storage.json").Get(context.Background(), "access")
	assert.ErrorIs(t, err, errFileIsDir)
}

func Test_FileReadOnlyFsFailsPut(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := NewFile(fs, "/data/storage.json").Put(context.Background(), map[string]string{"access": "a"})
	assert.Error(t, err)
}

func Test_RedisUsesPrefix(t *testing.T) {
	s, mr := newRedisTest(t)
	require.NoError(t, s.Put(context.Background(), map[string]string{"access": "a"}))

	v, err := mr.Get("test:access")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

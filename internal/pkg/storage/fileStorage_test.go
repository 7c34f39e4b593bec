package storage

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	s := NewFileStorage(t.TempDir())

	require.NoError(t, s.Save("archives/a.zip", strings.NewReader("zip-bytes")))
	require.NoError(t, s.Save("archives/b.zip", strings.NewReader("other")))

	rc, err := s.Get("archives/a.zip")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(body))

	names, err := s.List("archives")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.zip", "b.zip"}, names)

	require.NoError(t, s.Delete("archives/a.zip"))
	_, err = s.Get("archives/a.zip")
	assert.True(t, os.IsNotExist(err))

	names, err = s.List("missing")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStorageSaveOverwrites(t *testing.T) {
	s := NewFileStorage(t.TempDir())

	require.NoError(t, s.Save("meta.json", strings.NewReader(`{"v":1}`)))
	require.NoError(t, s.Save("meta.json", strings.NewReader(`{"v":2}`)))

	rc, err := s.Get("meta.json")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(body))

	names, err := s.List(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"meta.json"}, names)
}

func TestFileStorageRejectsEscapingPaths(t *testing.T) {
	s := NewFileStorage(t.TempDir())

	paths := []string{"../outside", "/etc/passwd", "a/../../b"}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			assert.Error(t, s.Save(p, strings.NewReader("x")))
			_, err := s.Get(p)
			assert.Error(t, err)
			assert.Error(t, s.Delete(p))
		})
	}
}

package inspector

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "set"), 0755))

	require.NoError(t, imaging.Save(image.NewNRGBA(image.Rect(0, 0, 16, 9)), filepath.Join(root, "set", "1.png")))
	require.NoError(t, imaging.Save(image.NewNRGBA(image.Rect(0, 0, 5, 7)), filepath.Join(root, "set", "2.bmp")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "3.gif"), []byte("garbage"), 0644))

	infos := NewImageInspector().Inspect(root, []entity.RenameMapping{
		{Dir: "set", From: "a.png", To: "1.png", Rank: 1},
		{Dir: "set", From: "b.bmp", To: "2.bmp", Rank: 2},
		{Dir: "", From: "c.gif", To: "3.gif", Rank: 3},
		{Dir: "", From: "gone.jpg", To: "4.jpg", Rank: 4},
	})

	assert.Equal(t, []entity.ImageInfo{
		{Path: "set/1.png", Width: 16, Height: 9},
		{Path: "set/2.bmp", Width: 5, Height: 7},
	}, infos)
}

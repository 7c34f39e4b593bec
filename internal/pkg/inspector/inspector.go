package inspector

import (
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/sirupsen/logrus"
)

type ImageInspector interface {
	Inspect(root string, renames []entity.RenameMapping) []entity.ImageInfo
}

type imageInspector struct{}

func NewImageInspector() ImageInspector {
	return &imageInspector{}
}

// Inspect decodes every renamed image and reports its EXIF-oriented size.
// Images that fail to decode are logged and left out.
func (i *imageInspector) Inspect(root string, renames []entity.RenameMapping) []entity.ImageInfo {
	infos := make([]entity.ImageInfo, 0, len(renames))

	for _, m := range renames {
		rel := path.Join(m.Dir, m.To)

		img, err := imaging.Open(filepath.Join(root, filepath.FromSlash(rel)), imaging.AutoOrientation(true))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"image": rel,
				"from":  m.From,
			}).Warnf("cannot decode image: %v", err)
			continue
		}

		bounds := img.Bounds()
		infos = append(infos, entity.ImageInfo{
			Path:   rel,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
	}

	return infos
}

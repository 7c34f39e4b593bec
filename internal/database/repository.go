package database

import (
	"io"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/storage"
)

type ResultRepository interface {
	Save(result *entity.Result) error
	FindByID(id string) (*entity.Result, error)
	List() ([]*entity.Result, error)
	Delete(id string) error
	SaveArchive(id string, archive io.Reader) error
	OpenArchive(id string) (io.ReadCloser, error)
}

type fileResultRepository struct {
	storage storage.FileStorage
}

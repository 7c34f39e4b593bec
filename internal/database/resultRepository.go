package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	metadataDir = "metadata"
	archivesDir = "archives"
)

func NewResultRepository(storage storage.FileStorage) ResultRepository {
	return &fileResultRepository{storage: storage}
}

func (r *fileResultRepository) Save(result *entity.Result) error {
	if err := validateID(result.ID); err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return r.storage.Save(r.metadataPath(result.ID), bytes.NewReader(data))
}

func (r *fileResultRepository) FindByID(id string) (*entity.Result, error) {
	if err := validateID(id); err != nil {
		return nil, entity.ErrResultNotFound
	}

	reader, err := r.storage.Get(r.metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrResultNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var result entity.Result
	if err := json.NewDecoder(reader).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", id, err)
	}

	return &result, nil
}

func (r *fileResultRepository) List() ([]*entity.Result, error) {
	names, err := r.storage.List(metadataDir)
	if err != nil {
		return nil, err
	}

	results := make([]*entity.Result, 0, len(names))
	for _, name := range names {
		id, ok := strings.CutSuffix(name, ".json")
		if !ok {
			continue
		}

		result, err := r.FindByID(id)
		if err != nil {
			logrus.WithField("result_id", id).Warnf("skipping unreadable result: %v", err)
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// Delete removes the archive first and the metadata last, so a result that is
// still listed always has something left to clean up.
func (r *fileResultRepository) Delete(id string) error {
	if err := validateID(id); err != nil {
		return entity.ErrResultNotFound
	}

	if err := r.storage.Delete(r.archivePath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := r.storage.Delete(r.metadataPath(id)); err != nil {
		if os.IsNotExist(err) {
			return entity.ErrResultNotFound
		}
		return err
	}

	return nil
}

func (r *fileResultRepository) SaveArchive(id string, archive io.Reader) error {
	if err := validateID(id); err != nil {
		return err
	}
	return r.storage.Save(r.archivePath(id), archive)
}

func (r *fileResultRepository) OpenArchive(id string) (io.ReadCloser, error) {
	if err := validateID(id); err != nil {
		return nil, entity.ErrResultNotFound
	}

	reader, err := r.storage.Get(r.archivePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrResultNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (r *fileResultRepository) metadataPath(id string) string {
	return filepath.Join(metadataDir, id+".json")
}

func (r *fileResultRepository) archivePath(id string) string {
	return filepath.Join(archivesDir, id+".zip")
}

// IDs come from URLs, so only accept what we hand out.
func validateID(id string) error {
	if u, err := uuid.Parse(id); err != nil || u.String() != id {
		return fmt.Errorf("invalid result id %q", id)
	}
	return nil
}

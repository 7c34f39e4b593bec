package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func (s *archiveService) Process(input []byte) ([]byte, *entity.Manifest, error) {
	return s.process(uuid.New().String(), input)
}

func (s *archiveService) process(id string, input []byte) ([]byte, *entity.Manifest, error) {
	start := s.now()
	output, manifest, err := s.processor.ProcessArchive(input)

	event := &entity.ArchiveEvent{
		ID:         id,
		Status:     entity.EventCompleted,
		DurationMs: s.now().Sub(start).Milliseconds(),
		Time:       s.now(),
	}
	if err != nil {
		event.Status = entity.EventFailed
		event.Kind = string(entity.KindOf(err))
		event.Error = err.Error()
	} else {
		event.Files = manifest.Files
		event.Images = manifest.Images
	}

	if perr := s.producer.Publish(event); perr != nil {
		logrus.WithField("archive_id", id).Errorf("failed to publish archive event: %v", perr)
	}

	if err != nil {
		return nil, nil, err
	}
	return output, manifest, nil
}

// Upload processes input and keeps the result until it is downloaded or expires.
func (s *archiveService) Upload(input []byte, source string) (*entity.Result, error) {
	id := uuid.New().String()

	output, manifest, err := s.process(id, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &entity.Result{
		ID:        id,
		Status:    entity.ResultReady,
		Source:    source,
		FileName:  s.outputName,
		Size:      int64(len(output)),
		Manifest:  manifest,
		CreatedAt: now,
		ExpiresAt: now.Add(s.resultTTL),
	}

	if err := s.repo.SaveArchive(id, bytes.NewReader(output)); err != nil {
		return nil, fmt.Errorf("store archive: %w", err)
	}
	if err := s.repo.Save(result); err != nil {
		// no metadata means the sweeper would never find the archive
		if derr := s.repo.Delete(id); derr != nil && !errors.Is(derr, entity.ErrResultNotFound) {
			logrus.WithField("result_id", id).Errorf("failed to remove orphan archive: %v", derr)
		}
		return nil, fmt.Errorf("store result: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"result_id":  id,
		"source":     source,
		"expires_at": result.ExpiresAt,
	}).Info("result stored")

	return result, nil
}

func (s *archiveService) Status(id string) (*entity.Result, error) {
	result, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if result.Expired(s.now()) {
		return nil, entity.ErrResultNotFound
	}
	return result, nil
}

// Download hands out a stored archive once, then deletes it.
func (s *archiveService) Download(id string) ([]byte, *entity.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.repo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	if result.Expired(s.now()) {
		s.deleteQuietly(id)
		return nil, nil, entity.ErrResultNotFound
	}

	reader, err := s.repo.OpenArchive(id)
	if err != nil {
		return nil, nil, err
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("read archive %s: %w", id, err)
	}

	s.deleteQuietly(id)
	result.Status = entity.ResultDelivered

	logrus.WithField("result_id", id).Infof("result %s", entity.StateDelivered)
	return data, result, nil
}

func (s *archiveService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Delete(id)
}

// CleanupExpired removes results nobody downloaded in time and reports how many went.
func (s *archiveService) CleanupExpired(now time.Time) (int, error) {
	results, err := s.repo.List()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, result := range results {
		if !result.Expired(now) {
			continue
		}
		if err := s.repo.Delete(result.ID); err != nil {
			// already gone means a download or delete got there first
			if !errors.Is(err, entity.ErrResultNotFound) {
				logrus.WithField("result_id", result.ID).Errorf("failed to remove expired result: %v", err)
			}
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *archiveService) deleteQuietly(id string) {
	if err := s.repo.Delete(id); err != nil && !errors.Is(err, entity.ErrResultNotFound) {
		logrus.WithField("result_id", id).Errorf("failed to remove result: %v", err)
	}
}

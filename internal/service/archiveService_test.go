package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/zip-renamer/internal/database"
	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/processor"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	mu     sync.Mutex
	events []*entity.ArchiveEvent
	err    error
}

func (p *recordingProducer) Publish(event *entity.ArchiveEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingProducer) Close() error { return nil }

type fixture struct {
	service  *archiveService
	producer *recordingProducer
	repo     database.ResultRepository
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		producer: &recordingProducer{},
		repo:     database.NewResultRepository(storage.NewFileStorage(t.TempDir())),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	proc := processor.NewArchiveProcessor(processor.Options{TempDir: t.TempDir()})
	svc := NewArchiveService(f.repo, f.producer, proc, 10*time.Minute, "renamed_images.zip").(*archiveService)
	svc.now = func() time.Time { return f.now }
	f.service = svc
	return f
}

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestProcessPublishesCompletedEvent(t *testing.T) {
	f := newFixture(t)

	output, manifest, err := f.service.Process(makeZip(t, map[string]string{"b.jpg": "b", "a.jpg": "a", "x.txt": "x"}))
	require.NoError(t, err)
	assert.NotEmpty(t, output)
	assert.Equal(t, 2, manifest.Images)

	require.Len(t, f.producer.events, 1)
	event := f.producer.events[0]
	assert.Equal(t, entity.EventCompleted, event.Status)
	assert.Equal(t, 2, event.Images)
	assert.Equal(t, 3, event.Files)
	assert.Empty(t, event.Kind)
	assert.NotEmpty(t, event.ID)
}

func TestProcessPublishesFailedEvent(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.service.Process([]byte("garbage"))

	require.Error(t, err)
	assert.Equal(t, entity.ExtractionError, entity.KindOf(err))
	require.Len(t, f.producer.events, 1)
	assert.Equal(t, entity.EventFailed, f.producer.events[0].Status)
	assert.Equal(t, string(entity.ExtractionError), f.producer.events[0].Kind)
	assert.Contains(t, f.producer.events[0].Error, "invalid zip archive")
}

func TestProcessIgnoresPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.producer.err = errors.New("broker down")

	_, _, err := f.service.Process(makeZip(t, map[string]string{"a.png": "a"}))

	assert.NoError(t, err)
}

func TestUploadThenDownloadOnce(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Upload(makeZip(t, map[string]string{"photos/b.png": "b", "photos/a.png": "a"}), "trip.zip")
	require.NoError(t, err)
	assert.Equal(t, entity.ResultReady, result.Status)
	assert.Equal(t, "trip.zip", result.Source)
	assert.Equal(t, "renamed_images.zip", result.FileName)
	assert.Equal(t, f.now.Add(10*time.Minute), result.ExpiresAt)
	assert.Equal(t, result.ID, f.producer.events[0].ID)

	status, err := f.service.Status(result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, status.ID)
	assert.Equal(t, 2, status.Manifest.Images)

	data, delivered, err := f.service.Download(result.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ResultDelivered, delivered.Status)
	assert.Equal(t, result.Size, int64(len(data)))

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, file := range zr.File {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{"photos/", "photos/1.png", "photos/2.png"}, names)

	_, _, err = f.service.Download(result.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
	_, err = f.service.Status(result.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
}

func TestUploadFailureStoresNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Upload([]byte("nope"), "broken.zip")
	require.Error(t, err)

	results, err := f.repo.List()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExpiredResultIsGone(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Upload(makeZip(t, map[string]string{"a.gif": "a"}), "a.zip")
	require.NoError(t, err)

	f.now = f.now.Add(11 * time.Minute)

	_, err = f.service.Status(result.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
	_, _, err = f.service.Download(result.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)

	_, err = f.repo.FindByID(result.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
}

func TestCleanupExpired(t *testing.T) {
	f := newFixture(t)

	old, err := f.service.Upload(makeZip(t, map[string]string{"a.jpg": "a"}), "old.zip")
	require.NoError(t, err)

	f.now = f.now.Add(5 * time.Minute)
	fresh, err := f.service.Upload(makeZip(t, map[string]string{"b.jpg": "b"}), "fresh.zip")
	require.NoError(t, err)

	removed, err := f.service.CleanupExpired(f.now.Add(6 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.repo.FindByID(old.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
	_, err = f.repo.FindByID(fresh.ID)
	assert.NoError(t, err)
}

// staleListRepo lists results that were already removed behind its back.
type staleListRepo struct {
	database.ResultRepository
	stale []*entity.Result
}

func (r *staleListRepo) List() ([]*entity.Result, error) {
	results, err := r.ResultRepository.List()
	return append(results, r.stale...), err
}

func TestCleanupExpiredCountsOnlyRemoved(t *testing.T) {
	f := newFixture(t)

	expired, err := f.service.Upload(makeZip(t, map[string]string{"a.jpg": "a"}), "a.zip")
	require.NoError(t, err)

	f.service.repo = &staleListRepo{
		ResultRepository: f.repo,
		stale: []*entity.Result{
			{ID: uuid.New().String(), ExpiresAt: f.now.Add(-time.Minute)},
		},
	}

	removed, err := f.service.CleanupExpired(f.now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.repo.FindByID(expired.ID)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Upload(makeZip(t, map[string]string{"a.jpg": "a"}), "a.zip")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(result.ID))
	assert.ErrorIs(t, f.service.Delete(result.ID), entity.ErrResultNotFound)
}

package service

import (
	"sync"
	"time"

	"github.com/ds124wfegd/zip-renamer/internal/database"
	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/kafka"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/processor"
)

type ArchiveService interface {
	Process(input []byte) ([]byte, *entity.Manifest, error)
	Upload(input []byte, source string) (*entity.Result, error)
	Status(id string) (*entity.Result, error)
	Download(id string) ([]byte, *entity.Result, error)
	Delete(id string) error
	CleanupExpired(now time.Time) (int, error)
}

type archiveService struct {
	repo       database.ResultRepository
	producer   kafka.Producer
	processor  processor.ArchiveProcessor
	resultTTL  time.Duration
	outputName string
	now        func() time.Time

	// serializes download and delete so a stored archive is handed out at most once
	mu sync.Mutex
}

func NewArchiveService(repo database.ResultRepository, producer kafka.Producer, processor processor.ArchiveProcessor, resultTTL time.Duration, outputName string) ArchiveService {
	return &archiveService{
		repo:       repo,
		producer:   producer,
		processor:  processor,
		resultTTL:  resultTTL,
		outputName: outputName,
		now:        time.Now,
	}
}

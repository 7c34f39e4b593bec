package transport

import (
	"github.com/ds124wfegd/zip-renamer/internal/service"
)

type ArchiveHandler struct {
	service     service.ArchiveService
	maxUpload   int64
	outputName  string
	downloadURL string
}

func NewArchiveHandler(service service.ArchiveService, maxUploadBytes int64, outputName string) *ArchiveHandler {
	return &ArchiveHandler{
		service:     service,
		maxUpload:   maxUploadBytes,
		outputName:  outputName,
		downloadURL: "/api/v1/archives/%s/download",
	}
}

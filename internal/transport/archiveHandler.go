package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const archiveField = "archive"

// ProcessArchive renames an uploaded archive and returns the result in the same response.
func (h *ArchiveHandler) ProcessArchive(c *gin.Context) {
	data, _, ok := h.readUpload(c)
	if !ok {
		return
	}

	output, manifest, err := h.service.Process(data)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.outputName))
	c.Header("X-Renamed-Images", strconv.Itoa(manifest.Images))
	c.Data(http.StatusOK, "application/zip", output)
}

// UploadArchive renames an uploaded archive and keeps it for a single later download.
func (h *ArchiveHandler) UploadArchive(c *gin.Context) {
	data, source, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.service.Upload(data, source)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.UploadResponse{
		ID:          result.ID,
		Status:      result.Status,
		DownloadURL: fmt.Sprintf(h.downloadURL, result.ID),
		ExpiresAt:   result.ExpiresAt,
		Manifest:    result.Manifest,
	})
}

func (h *ArchiveHandler) GetArchive(c *gin.Context) {
	result, err := h.service.Status(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ArchiveHandler) DownloadArchive(c *gin.Context) {
	data, result, err := h.service.Download(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, "application/zip", data)
}

func (h *ArchiveHandler) DeleteArchive(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Archive deleted successfully"})
}

// readUpload pulls the zip out of the multipart form. On failure it has
// already written the response.
func (h *ArchiveHandler) readUpload(c *gin.Context) ([]byte, string, bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	file, err := c.FormFile(archiveField)
	if c.Request.MultipartForm != nil {
		defer c.Request.MultipartForm.RemoveAll()
	}
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, entity.ErrorResponse{
				Error: fmt.Sprintf("Archive too large, limit is %d MB", h.maxUpload>>20),
			})
			return nil, "", false
		}
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "No archive file provided"})
		return nil, "", false
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".zip" {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid archive type. Supported: zip"})
		return nil, "", false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: err.Error()})
		return nil, "", false
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: err.Error()})
		return nil, "", false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrEmptyUpload.Error()})
		return nil, "", false
	}

	return data, file.Filename, true
}

func (h *ArchiveHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := entity.KindOf(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrResultNotFound):
		status = http.StatusNotFound
	case kind == entity.ExtractionError:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logrus.WithField("kind", kind).Errorf("archive request failed: %v", err)
	}

	c.JSON(status, entity.ErrorResponse{Error: err.Error(), Kind: string(kind)})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

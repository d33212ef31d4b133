package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/danushadhitya/file-manager/internal/registry"
	"github.com/danushadhitya/file-manager/internal/utils"
)

// FileHandler maps the HTTP surface onto registry operations.
type FileHandler struct {
	registry *registry.Registry
	log      *zap.Logger
}

func NewFileHandler(reg *registry.Registry, log *zap.Logger) *FileHandler {
	return &FileHandler{registry: reg, log: log}
}

// POST /api/v1/upload
// Upload godoc
// @Summary Upload a file
// @Description Stores the file bytes in the object store and records a metadata row with status UPLOADED.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 413 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Router /api/v1/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.registry.MaxUploadSize()

	// Reject on the declared length before reading anything; MaxBytesReader
	// backstops clients that lie or stream chunked bodies.
	if r.ContentLength > maxSize {
		utils.JSONResponse(w, http.StatusRequestEntityTooLarge, utils.Payload{
			Success: false,
			Error:   "File exceeds the maximum upload size",
		})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.JSONResponse(w, http.StatusRequestEntityTooLarge, utils.Payload{
				Success: false,
				Error:   "File exceeds the maximum upload size",
			})
			return
		}
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Error:   "Invalid file upload form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	rec, err := h.registry.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		h.respondError(w, err, "upload failed")
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File uploaded successfully",
		Data:    rec,
	})
}

// GET /api/v1/list
// List godoc
// @Summary List tracked files
// @Description Returns one page of metadata rows ordered oldest first. Deleted records are included.
// @Tags Files
// @Produce json
// @Param page query int false "Page number (min 1)"
// @Param page_size query int false "Page size (default 10, max 20)"
// @Success 200 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Router /api/v1/list [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	files, pagination, err := h.registry.List(r.Context(), page, pageSize)
	if err != nil {
		h.respondError(w, err, "list failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data: map[string]any{
			"files":      files,
			"pagination": pagination,
		},
	})
}

// GET /api/v1/download/{id}
// Download godoc
// @Summary Get a presigned download URL
// @Description Returns a time-limited URL for the file's object. The record's status is not checked; the URL for a deleted object fails when dereferenced.
// @Tags Files
// @Produce json
// @Param id path int true "File id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Router /api/v1/download/{id} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	url, expiresAt, err := h.registry.Download(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "download failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Download URL generated successfully",
		Data: map[string]any{
			"url":       url,
			"expiresAt": expiresAt,
		},
	})
}

// DELETE /api/v1/delete/{id}
// Delete godoc
// @Summary Delete a file
// @Description Removes the object from the store and marks the metadata row DELETED. Idempotent; the row is kept.
// @Tags Files
// @Produce json
// @Param id path int true "File id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Router /api/v1/delete/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	filename, err := h.registry.Delete(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "delete failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
		Data: map[string]any{
			"filename": filename,
		},
	})
}

func (h *FileHandler) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Error:   "Invalid file id",
		})
		return 0, false
	}
	return uint(id), true
}

// respondError translates registry errors into status codes. Backend
// diagnostics stay in the log; clients get the taxonomy message only.
func (h *FileHandler) respondError(w http.ResponseWriter, err error, logMsg string) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, registry.ErrValidation):
		status, msg = http.StatusBadRequest, "Invalid filename or empty file"
	case errors.Is(err, registry.ErrSizeLimit):
		status, msg = http.StatusRequestEntityTooLarge, "File exceeds the maximum upload size"
	case errors.Is(err, registry.ErrNotFound):
		status, msg = http.StatusNotFound, "File not found"
	case errors.Is(err, registry.ErrStorageWrite):
		msg = "Failed to store file"
	case errors.Is(err, registry.ErrStorageDelete):
		msg = "Failed to delete file from storage"
	case errors.Is(err, registry.ErrMetadataWrite):
		msg = "Failed to record file metadata"
	}

	if status == http.StatusInternalServerError {
		h.log.Error(logMsg, zap.Error(err))
	}

	utils.JSONResponse(w, status, utils.Payload{
		Success: false,
		Error:   msg,
	})
}

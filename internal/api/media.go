package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitkuhar/kitkuhar/backend/internal/middleware"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
)

// MaxMultipartMemory bounds the in-memory part of a multipart upload;
// the rest is spooled to temporary files.
const MaxMultipartMemory = 32 << 20

// MediaHandler accepts step images and videos from signed-in users
type MediaHandler struct {
	media service.IMediaService
}

func NewMediaHandler(media service.IMediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup) {
	media := router.Group("/media", middleware.AuthMiddleware())
	{
		media.POST("/upload-step-file", h.UploadStepFile)
		media.POST("/upload-step-files", h.UploadStepFiles)
		media.DELETE("/delete-step-file/:filename", h.DeleteStepFile)
	}
}

func (h *MediaHandler) UploadStepFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "a file is required in the \"file\" field")
		return
	}
	file, err := h.media.Save(c.Request.Context(), toUpload(header))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{Success: true, Message: "File uploaded successfully", File: *file})
}

func (h *MediaHandler) UploadStepFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		badRequest(c, "files are required in the \"files\" field")
		return
	}

	headers := form.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, toUpload(fh))
	}

	files, err := h.media.SaveBatch(c.Request.Context(), uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, BatchUploadResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully uploaded %d files", len(files)),
		Files:   files,
	})
}

func (h *MediaHandler) DeleteStepFile(c *gin.Context) {
	if err := h.media.Delete(c.Request.Context(), c.Param("filename")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted successfully"})
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

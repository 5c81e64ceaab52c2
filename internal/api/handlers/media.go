package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"xr-archive/internal/session"
	"xr-archive/internal/storage"
)

// MediaHandler serves object URLs minted for the current import
type MediaHandler struct {
	lib *session.Library
}

func NewMediaHandler(lib *session.Library) *MediaHandler {
	return &MediaHandler{lib: lib}
}

// StreamMedia streams the payload behind an object URL, honoring Range requests
func (h *MediaHandler) StreamMedia(c *gin.Context) {
	payload, err := h.lib.Media(c.Param("token"))
	if err != nil {
		session.RecordMediaRequest("revoked")
		respondError(c, err)
		return
	}

	if obj, ok := payload.(*storage.Object); ok {
		h.streamObject(c, obj)
		return
	}

	body, err := payload.Open()
	if err != nil {
		session.RecordMediaRequest("error")
		slog.Error("failed to open media", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open media"})
		return
	}
	defer body.Close()

	session.RecordMediaRequest("ok")
	if seeker, ok := body.(io.ReadSeeker); ok {
		c.Header("Content-Type", "audio/wav")
		http.ServeContent(c.Writer, c.Request, "", time.Time{}, seeker)
		return
	}
	c.DataFromReader(http.StatusOK, payload.Size(), "audio/wav", body, map[string]string{
		"Accept-Ranges": "none",
	})
}

// streamObject serves a stored object. Local files go through ServeContent;
// backends that read ranges themselves (S3) get the Range header forwarded.
func (h *MediaHandler) streamObject(c *gin.Context, obj *storage.Object) {
	rng := c.GetHeader("Range")

	var (
		file *storage.FileObject
		err  error
	)
	if rng != "" && obj.SupportsRange() {
		file, err = obj.OpenRange(rng)
	} else {
		file, err = obj.OpenObject()
	}
	if errors.Is(err, storage.ErrInvalidRange) {
		session.RecordMediaRequest("error")
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", obj.Size()))
		c.JSON(http.StatusRequestedRangeNotSatisfiable, gin.H{"error": "Requested range not satisfiable"})
		return
	}
	if err != nil {
		session.RecordMediaRequest("error")
		slog.Error("failed to open media", "key", obj.Key(), "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Audio file missing from storage"})
		return
	}
	// CRITICAL: Always close the storage stream to prevent memory/connection leaks
	defer file.Body.Close()

	session.RecordMediaRequest("ok")
	if seeker, ok := file.Body.(io.ReadSeeker); ok {
		c.Header("Content-Type", file.ContentType)
		http.ServeContent(c.Writer, c.Request, obj.Key(), file.LastModified, seeker)
		return
	}

	acceptRanges := "none"
	if obj.SupportsRange() {
		acceptRanges = "bytes"
	}
	headers := map[string]string{"Accept-Ranges": acceptRanges}

	status := http.StatusOK
	if file.ContentRange != "" {
		status = http.StatusPartialContent
		headers["Content-Range"] = file.ContentRange
	}
	c.DataFromReader(status, file.ContentLength, file.ContentType, file.Body, headers)
}

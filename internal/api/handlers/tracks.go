package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"xr-archive/internal/archive"
	"xr-archive/internal/session"
)

// TrackHandler serves the current collection: listing, lookup, navigation and downloads
type TrackHandler struct {
	lib *session.Library
}

func NewTrackHandler(lib *session.Library) *TrackHandler {
	return &TrackHandler{lib: lib}
}

// GetTracks returns the visible tracks for a category and search term
func (h *TrackHandler) GetTracks(c *gin.Context) {
	q := archive.Query{
		Category: c.DefaultQuery("category", archive.AllCategory),
		Search:   c.Query("search"),
	}

	visible, total, err := h.lib.Filter(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": visible,
		"meta": gin.H{
			"total":   total,
			"visible": len(visible),
		},
	})
}

func (h *TrackHandler) GetTrack(c *gin.Context) {
	track, err := h.lib.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, track)
}

// GetNext and GetPrev walk the full collection, ignoring any active filter
func (h *TrackHandler) GetNext(c *gin.Context) {
	track, err := h.lib.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, track)
}

func (h *TrackHandler) GetPrev(c *gin.Context) {
	track, err := h.lib.Prev(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, track)
}

// GetCategories returns the sidebar: the "All" entry, instruments and top moods
func (h *TrackHandler) GetCategories(c *gin.Context) {
	cats, err := h.lib.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"all":         archive.AllCategory,
		"instruments": cats.Instruments,
		"moods":       cats.Moods,
	})
}

// DownloadTrack sends the audio as an attachment under its original file name
func (h *TrackHandler) DownloadTrack(c *gin.Context) {
	track, err := h.lib.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if track.Blob == nil {
		session.RecordMediaRequest("revoked")
		c.JSON(http.StatusGone, gin.H{"error": "Track audio is no longer available"})
		return
	}

	body, err := track.Blob.Open()
	if err != nil {
		session.RecordMediaRequest("error")
		slog.Error("failed to open track", "id", track.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audio file missing from storage"})
		return
	}
	defer body.Close()

	// FormatMediaType switches to RFC 2231 encoding for non-ASCII names
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": track.FileName})
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(track.FileName)))
	if contentType == "" {
		contentType = "audio/wav"
	}

	session.RecordMediaRequest("ok")
	c.DataFromReader(http.StatusOK, track.Blob.Size(), contentType, body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// respondError maps library errors onto status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrTrackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
	case errors.Is(err, session.ErrEmptyLibrary):
		c.JSON(http.StatusNotFound, gin.H{"error": "No tracks imported"})
	case errors.Is(err, session.ErrRevoked):
		c.JSON(http.StatusGone, gin.H{"error": "Object URL has been revoked"})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog error"})
	}
}

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"xr-archive/internal/archive"
	"xr-archive/internal/session"
	"xr-archive/internal/storage"
)

// ArchiveHandler replaces the collection, either from a browser folder upload
// or from the configured storage library.
type ArchiveHandler struct {
	lib       *session.Library
	storage   *storage.Client
	maxUpload int64
}

func NewArchiveHandler(lib *session.Library, st *storage.Client, maxUploadBytes int64) *ArchiveHandler {
	return &ArchiveHandler{lib: lib, storage: st, maxUpload: maxUploadBytes}
}

type importRequest struct {
	Prefix string `json:"prefix"`
}

// ImportLibrary imports every object under a storage prefix
func (h *ArchiveHandler) ImportLibrary(c *gin.Context) {
	var req importRequest
	// An empty body imports the whole library
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
	}

	objects, err := h.storage.ListLibrary(req.Prefix)
	if err != nil {
		slog.Error("failed to list library", "prefix", req.Prefix, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Storage listing failed"})
		return
	}

	sources := make([]archive.Source, len(objects))
	for i, obj := range objects {
		sources[i] = archive.Source{Name: path.Base(obj.Key), Payload: h.storage.LibraryObject(obj)}
	}

	h.finishImport(c, session.OriginLibrary, sources)
}

// UploadFolder accepts a multipart "files" field, as sent by a folder picker.
// Only importable files are spooled; the rest are counted as ignored.
func (h *ArchiveHandler) UploadFolder(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart upload"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	batch := uuid.NewString()
	sources := make([]archive.Source, 0, len(files))
	var spooled []*storage.Object

	for i, fh := range files {
		if !archive.IsImportable(fh.Filename) {
			sources = append(sources, archive.Source{Name: fh.Filename})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			releaseAll(spooled)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open file"})
			return
		}
		key := fmt.Sprintf("%s/%04d-%s", batch, i, path.Base(fh.Filename))
		obj, err := h.storage.Spool(key, f, fh.Size)
		f.Close()
		if err != nil {
			releaseAll(spooled)
			slog.Error("failed to spool upload", "file", fh.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server storage error"})
			return
		}

		spooled = append(spooled, obj)
		sources = append(sources, archive.Source{Name: fh.Filename, Payload: obj})
	}

	h.finishImport(c, session.OriginUpload, sources)
}

func (h *ArchiveHandler) finishImport(c *gin.Context, origin session.Origin, sources []archive.Source) {
	res, err := h.lib.Import(c.Request.Context(), origin, sources)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"accepted": res.Accepted,
		"ignored":  res.Ignored,
		"data":     res.Tracks,
	})
}

// Release drops the collection and revokes every media URL
func (h *ArchiveHandler) Release(c *gin.Context) {
	n, err := h.lib.Release(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": n})
}

// GetStats summarizes the current import
func (h *ArchiveHandler) GetStats(c *gin.Context) {
	stats, err := h.lib.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_tracks": stats.TotalTracks,
		"total_bytes":  stats.TotalBytes,
		"total_size":   humanize.Bytes(uint64(stats.TotalBytes)),
		"uploaded":     stats.Uploaded,
		"from_library": stats.FromLibrary,
	})
}

func releaseAll(objects []*storage.Object) {
	for _, obj := range objects {
		_ = obj.Release()
	}
}

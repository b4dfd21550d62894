package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/adler32"
	"github.com/frostdev-ops/Loolib-sub000/internal/config"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// CompressRequest represents the compression request payload
type CompressRequest struct {
	Algorithm string `form:"algorithm"`
	Level     *int   `form:"level"`
	Encoding  string `form:"encoding"`
}

// DecompressRequest represents the decompression request payload
type DecompressRequest struct {
	Algorithm string `form:"algorithm"`
	Encoding  string `form:"encoding"`
}

// ErrorResponse represents an error response. Kind is set when the input was
// rejected by a decoder.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// ChecksumResponse reports the checksums of an uploaded file.
type ChecksumResponse struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Adler32  string `json:"adler32"`
	XXHash64 string `json:"xxhash64"`
}

// Handler serves the API using the limits and defaults of cfg.
type Handler struct {
	cfg *config.Config
	log *logrus.Entry
}

// NewHandler returns a Handler for cfg.
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		cfg: cfg,
		log: logrus.WithField("pkg", "api"),
	}
}

// HandleCompress handles file compression requests
func (h *Handler) HandleCompress(c *gin.Context) {
	var req CompressRequest
	if err := c.ShouldBind(&req); err != nil {
		h.abortBindError(c, err)
		return
	}

	options := compression.Options{
		Algorithm: valueOr(req.Algorithm, h.cfg.Algorithm),
		Level:     h.cfg.Level,
		Encoding:  valueOr(req.Encoding, h.cfg.Encoding),
	}
	if req.Level != nil {
		options.Level = *req.Level
	}
	if !h.validOptions(c, options) {
		return
	}
	if options.Level < config.MinLevel || options.Level > config.MaxLevel {
		abortWithError(c, http.StatusBadRequest, "Invalid level",
			fmt.Sprintf("Level must be between %d and %d", config.MinLevel, config.MaxLevel))
		return
	}

	fileContent, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	compressedData, stats, err := compression.Compress(fileContent, options)
	if err != nil {
		h.log.WithError(err).Error("compression failed")
		abortWithError(c, http.StatusInternalServerError, "Compression failed", err.Error())
		return
	}

	h.log.WithFields(logrus.Fields{
		"algorithm": stats.Algorithm,
		"encoding":  stats.Encoding,
		"original":  stats.OriginalSize,
		"processed": stats.ProcessedSize,
	}).Info("compressed upload")

	// Set response headers for file download
	outName := fmt.Sprintf("%s_compressed.%s", getBaseFilename(filename), compression.Extension(options.Algorithm, options.Encoding))
	setStatsHeaders(c, stats)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outName))
	c.Header("ETag", etag(compressedData))
	c.Data(http.StatusOK, "application/octet-stream", compressedData)
}

// HandleDecompress handles file decompression requests
func (h *Handler) HandleDecompress(c *gin.Context) {
	var req DecompressRequest
	if err := c.ShouldBind(&req); err != nil {
		h.abortBindError(c, err)
		return
	}

	options := compression.Options{
		Algorithm: valueOr(req.Algorithm, h.cfg.Algorithm),
		Encoding:  valueOr(req.Encoding, h.cfg.Encoding),
		MaxOutput: int(h.cfg.MaxOutputSize),
	}
	if !h.validOptions(c, options) {
		return
	}

	fileContent, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	decompressedData, stats, err := compression.Decompress(fileContent, options)
	if err != nil {
		kind := failure.KindOf(err)
		h.log.WithFields(logrus.Fields{
			"algorithm": options.Algorithm,
			"kind":      kind,
		}).WithError(err).Warn("rejected compressed upload")

		status := http.StatusUnprocessableEntity
		if kind == failure.OutputLimitExceeded {
			status = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(status, ErrorResponse{
			Error:   "Decompression failed",
			Code:    status,
			Message: err.Error(),
			Kind:    kindName(err),
		})
		return
	}

	// Set response headers for file download
	outName := fmt.Sprintf("%s_decompressed", getBaseFilename(filename))
	setStatsHeaders(c, stats)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outName))
	c.Header("ETag", etag(decompressedData))
	c.Data(http.StatusOK, "application/octet-stream", decompressedData)
}

// HandleChecksum reports the Adler-32 and xxhash64 of an uploaded file.
func (h *Handler) HandleChecksum(c *gin.Context) {
	fileContent, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ChecksumResponse{
		Filename: filename,
		Size:     len(fileContent),
		Adler32:  fmt.Sprintf("%08x", adler32.Checksum(fileContent)),
		XXHash64: fmt.Sprintf("%016x", xxhash.Sum64(fileContent)),
	})
}

// HandleInfo provides information about supported algorithms
func (h *Handler) HandleInfo(c *gin.Context) {
	info := map[string]interface{}{
		"service": "squash compression service",
		"version": config.VERSION,
		"algorithms": map[string]interface{}{
			"supported": compression.GetSupportedAlgorithms(),
			"default":   h.cfg.Algorithm,
			"descriptions": map[string]string{
				"deflate": "Raw DEFLATE (RFC 1951), stored and fixed-Huffman blocks",
				"zlib":    "zlib envelope (RFC 1950) with an Adler-32 trailer",
				"gzip":    "gzip member (RFC 1952) with a CRC-32 trailer",
				"zstd":    "Zstandard",
				"s2":      "S2, a Snappy extension",
				"snappy":  "Snappy block format",
				"lz4":     "LZ4 block format",
				"brotli":  "Brotli",
			},
		},
		"encodings": compression.GetSupportedEncodings(),
		"levels": map[string]int{
			"min":     config.MinLevel,
			"max":     config.MaxLevel,
			"default": h.cfg.Level,
		},
		"limits": map[string]interface{}{
			"max_file_size":   fmt.Sprintf("%d bytes (%.1f MB)", h.cfg.MaxFileSize, float64(h.cfg.MaxFileSize)/(1024*1024)),
			"max_output_size": fmt.Sprintf("%d bytes (%.1f MB)", h.cfg.MaxOutputSize, float64(h.cfg.MaxOutputSize)/(1024*1024)),
		},
		"endpoints": map[string]interface{}{
			"compress":   "POST /api/v1/compress - Upload file for compression",
			"decompress": "POST /api/v1/decompress - Upload file for decompression",
			"checksum":   "POST /api/v1/checksum - Adler-32 and xxhash64 of a file",
			"info":       "GET /api/v1/info - Get service information",
			"health":     "GET /api/v1/health - Health check",
		},
	}

	c.JSON(http.StatusOK, info)
}

// HandleHealth provides a simple health check endpoint
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "compression-service",
	})
}

func (h *Handler) validOptions(c *gin.Context, options compression.Options) bool {
	if !compression.IsValidAlgorithm(options.Algorithm) {
		abortWithError(c, http.StatusBadRequest, "Invalid algorithm",
			fmt.Sprintf("Supported algorithms: %v", compression.GetSupportedAlgorithms()))
		return false
	}
	if !compression.IsValidEncoding(options.Encoding) {
		abortWithError(c, http.StatusBadRequest, "Invalid encoding",
			fmt.Sprintf("Supported encodings: %v", compression.GetSupportedEncodings()))
		return false
	}
	return true
}

// readUpload reads the multipart "file" field. On failure it has already
// written the error response.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			h.abortTooLarge(c)
			return nil, "", false
		}
		abortWithError(c, http.StatusBadRequest, "File upload error", "No file provided or file upload failed")
		return nil, "", false
	}
	defer file.Close()

	// Check file size
	if header.Size > h.cfg.MaxFileSize {
		h.abortTooLarge(c)
		return nil, "", false
	}

	fileContent, err := io.ReadAll(file)
	if err != nil {
		h.log.WithError(err).Error("failed to read upload")
		abortWithError(c, http.StatusInternalServerError, "File read error", "Failed to read uploaded file")
		return nil, "", false
	}
	return fileContent, header.Filename, true
}

func (h *Handler) abortBindError(c *gin.Context, err error) {
	if isBodyTooLarge(err) {
		h.abortTooLarge(c)
		return
	}
	abortWithError(c, http.StatusBadRequest, "Invalid request", err.Error())
}

func (h *Handler) abortTooLarge(c *gin.Context) {
	abortWithError(c, http.StatusRequestEntityTooLarge, "File too large",
		fmt.Sprintf("Maximum file size is %d bytes", h.cfg.MaxFileSize))
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func abortWithError(c *gin.Context, status int, title, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   title,
		Code:    status,
		Message: message,
	})
}

func setStatsHeaders(c *gin.Context, stats *compression.Stats) {
	c.Header("X-Algorithm", stats.Algorithm)
	c.Header("X-Encoding", stats.Encoding)
	c.Header("X-Original-Size", strconv.Itoa(stats.OriginalSize))
	c.Header("X-Processed-Size", strconv.Itoa(stats.ProcessedSize))
	c.Header("X-Compression-Ratio", strconv.FormatFloat(stats.CompressionRatio, 'f', 2, 64))
	c.Header("X-Fingerprint", fmt.Sprintf("%016x", stats.Fingerprint))
}

func etag(data []byte) string {
	return fmt.Sprintf("\"%016x\"", xxhash.Sum64(data))
}

// kindName is the failure kind of err, or "" for errors that did not come
// from a decoder of this module.
func kindName(err error) string {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return fe.Kind.String()
	}
	return ""
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Helper functions
func getBaseFilename(filename string) string {
	if filename == "" {
		return "file"
	}

	// Remove extension
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}

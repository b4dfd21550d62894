package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/Loolib-sub000/deflate"
	"github.com/frostdev-ops/Loolib-sub000/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:          "8080",
		Environment:   "test",
		LogLevel:      "info",
		MaxFileSize:   1 << 20,
		MaxOutputSize: 1 << 16,
		Algorithm:     "zlib",
		Level:         -1,
		Encoding:      "none",
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, NewHandler(testConfig()))
	return router
}

func upload(t *testing.T, router *gin.Engine, path string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndInfo(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/health", "/api/v1/health", "/info", "/api/v1/info", "/"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/compress", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCompressThenDecompress(t *testing.T) {
	router := newTestRouter(t)
	content := bytes.Repeat([]byte("round trip through the api "), 100)

	for _, algorithm := range []string{"deflate", "zlib", "gzip", "zstd", "lz4", "brotli"} {
		for _, encoding := range []string{"none", "channel", "print"} {
			fields := map[string]string{"algorithm": algorithm, "encoding": encoding, "level": "9"}
			rec := upload(t, router, "/api/v1/compress", content, fields)
			require.Equal(t, http.StatusOK, rec.Code, "%s/%s: %s", algorithm, encoding, rec.Body.String())
			require.NotEmpty(t, rec.Header().Get("ETag"))
			require.Equal(t, "2700", rec.Header().Get("X-Original-Size"))
			compressed := rec.Body.Bytes()

			delete(fields, "level")
			rec = upload(t, router, "/api/v1/decompress", compressed, fields)
			require.Equal(t, http.StatusOK, rec.Code, "%s/%s: %s", algorithm, encoding, rec.Body.String())
			require.Equal(t, content, rec.Body.Bytes())
		}
	}
}

func TestCompress_DefaultsToZlib(t *testing.T) {
	router := newTestRouter(t)
	rec := upload(t, router, "/compress", []byte("Hello, World!"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []byte{0x78, 0x9c}, rec.Body.Bytes()[:2])
	require.Contains(t, rec.Header().Get("Content-Disposition"), "notes_compressed.zz")

	out, err := deflate.DecompressZlib(rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", string(out))
}

func TestBadRequests(t *testing.T) {
	router := newTestRouter(t)

	rec := upload(t, router, "/api/v1/compress", []byte("x"), map[string]string{"algorithm": "huffman"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid algorithm", decodeError(t, rec).Error)

	rec = upload(t, router, "/api/v1/compress", []byte("x"), map[string]string{"encoding": "hex"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, router, "/api/v1/compress", []byte("x"), map[string]string{"level": "11"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/compress", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecompress_MalformedInputIs422WithKind(t *testing.T) {
	router := newTestRouter(t)

	corrupt := deflate.CompressZlib([]byte("Hello, World!"), 6)
	corrupt[len(corrupt)-1] ^= 0xff
	rec := upload(t, router, "/api/v1/decompress", corrupt, map[string]string{"algorithm": "zlib"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	require.Equal(t, "ChecksumMismatch", resp.Kind)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	rec = upload(t, router, "/api/v1/decompress", []byte{0x05, 0x00}, map[string]string{"algorithm": "deflate"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "UnsupportedBlockType", decodeError(t, rec).Kind)

	rec = upload(t, router, "/api/v1/decompress", []byte("%%%%"), map[string]string{"algorithm": "deflate", "encoding": "print"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "InvalidBase64", decodeError(t, rec).Kind)
}

func TestDecompress_OutputLimit(t *testing.T) {
	router := newTestRouter(t)
	bomb := deflate.CompressZlib(make([]byte, 1<<18), 9)

	rec := upload(t, router, "/api/v1/decompress", bomb, map[string]string{"algorithm": "zlib"})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, "OutputLimitExceeded", decodeError(t, rec).Kind)
}

func TestUpload_TooLarge(t *testing.T) {
	router := newTestRouter(t)
	rec := upload(t, router, "/api/v1/checksum", make([]byte, 3<<20), nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChecksum(t *testing.T) {
	router := newTestRouter(t)
	rec := upload(t, router, "/api/v1/checksum", []byte("Wikipedia"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChecksumResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "11e60398", resp.Adler32)
	require.Equal(t, 9, resp.Size)
	require.Equal(t, "notes.txt", resp.Filename)
	require.Len(t, resp.XXHash64, 16)
}

func TestHelpers(t *testing.T) {
	require.Equal(t, "file", getBaseFilename(""))
	require.Equal(t, "archive.tar", getBaseFilename("archive.tar.gz"))
	require.Equal(t, "README", getBaseFilename("README"))
}

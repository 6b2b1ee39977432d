package api_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitkuhar/kitkuhar/backend/internal/api"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
)

type part struct {
	field, filename string
	data            []byte
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path, token string, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadStepFile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t)

	w := env.serve(multipartRequest(t, "/api/v1/media/upload-step-file", token, part{"file", "beets.png", pngBytes(t, 64, 48)}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.UploadResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "File uploaded successfully", resp.Message)
	assert.Equal(t, "beets.png", resp.File.OriginalFilename)
	assert.Equal(t, service.MediaImage, resp.File.Type)
	assert.True(t, strings.HasSuffix(resp.File.Filename, ".jpg"))
	assert.Equal(t, service.StaticPrefix+"/"+resp.File.Filename, resp.File.URL)

	stored, ok := env.store.Files[resp.File.Filename]
	require.True(t, ok)
	assert.Equal(t, int64(len(stored)), resp.File.Size)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 64, cfg.Width)
}

func TestUploadStepFileRejections(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t)

	w := env.serve(multipartRequest(t, "/api/v1/media/upload-step-file", "", part{"file", "beets.png", pngBytes(t, 8, 8)}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.serve(multipartRequest(t, "/api/v1/media/upload-step-file", token, part{"file", "virus.exe", []byte("MZ")}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.serve(multipartRequest(t, "/api/v1/media/upload-step-file", token, part{"other", "beets.png", pngBytes(t, 8, 8)}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := bytes.Repeat([]byte{0}, service.MaxFileSize+1)
	w = env.serve(multipartRequest(t, "/api/v1/media/upload-step-file", token, part{"file", "clip.mp4", big}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, env.store.Files)
}

func TestUploadStepFiles(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t)

	w := env.serve(multipartRequest(t, "/api/v1/media/upload-step-files", token,
		part{"files", "one.png", pngBytes(t, 16, 16)},
		part{"files", "two.mp4", []byte("not really a video but stored as is")},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.BatchUploadResponse
	decode(t, w, &resp)
	assert.Equal(t, "Successfully uploaded 2 files", resp.Message)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, service.MediaVideo, resp.Files[1].Type)
	assert.True(t, strings.HasSuffix(resp.Files[1].Filename, ".mp4"))
	assert.Len(t, env.store.Files, 2)
}

func TestUploadStepFilesRejectsWholeBatch(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t)

	w := env.serve(multipartRequest(t, "/api/v1/media/upload-step-files", token,
		part{"files", "one.png", pngBytes(t, 16, 16)},
		part{"files", "two.txt", []byte("hello")},
	))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.store.Files)

	parts := make([]part, service.MaxBatchFiles+1)
	for i := range parts {
		parts[i] = part{"files", "p.png", pngBytes(t, 4, 4)}
	}
	w = env.serve(multipartRequest(t, "/api/v1/media/upload-step-files", token, parts...))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.store.Files)
}

func TestDeleteStepFile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t)

	w := env.serve(multipartRequest(t, "/api/v1/media/upload-step-file", token, part{"file", "beets.png", pngBytes(t, 8, 8)}))
	require.Equal(t, http.StatusOK, w.Code)
	var resp api.UploadResponse
	decode(t, w, &resp)

	path := "/api/v1/media/delete-step-file/" + resp.File.Filename
	w = env.do(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, env.store.Files)

	w = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/media/delete-step-file/..%2Fsecrets", nil, token)
	assert.NotEqual(t, http.StatusOK, w.Code)
}

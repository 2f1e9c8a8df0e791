package service

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeaderFor wraps raw bytes in a *multipart.FileHeader the same way Fiber
// hands uploads to handlers.
func fileHeaderFor(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestImageService(t *testing.T) (*ImageService, string) {
	t.Helper()
	root := t.TempDir()
	return NewImageService(&config.Config{MediaRoot: root}), root
}

func TestSavePostImage(t *testing.T) {
	svc, root := newTestImageService(t)

	fh := fileHeaderFor(t, "holiday.png", pngBytes(t, 800, 600))
	url, err := svc.SavePostImage(fh)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/posts/"), "got %q", url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, "/media/")
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.NoError(t, err, "original should be written under the media root")

	thumbRel := strings.TrimPrefix(ThumbnailURL(url), "/media/")
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(thumbRel)))
	assert.NoError(t, err, "thumbnail should be written next to the original")
}

func TestSavePostImageRejectsBadUploads(t *testing.T) {
	svc, _ := newTestImageService(t)

	isValidationErr := func(err error) bool {
		var appErr *models.AppError
		return errors.As(err, &appErr) && appErr.Code == models.CodeValidation
	}

	_, err := svc.SavePostImage(nil)
	assert.True(t, isValidationErr(err))

	_, err = svc.SavePostImage(fileHeaderFor(t, "notes.txt", []byte("just some text")))
	assert.True(t, isValidationErr(err), "non-image content: %v", err)

	_, err = svc.SavePostImage(fileHeaderFor(t, "empty.png", nil))
	assert.True(t, isValidationErr(err))

	oversized := make([]byte, MaxImageUploadSizeMB*1024*1024+1)
	_, err = svc.SavePostImage(fileHeaderFor(t, "huge.png", oversized))
	assert.True(t, isValidationErr(err))
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "/media/posts/abc_thumb.webp", ThumbnailURL("/media/posts/abc.png"))
	assert.Equal(t, "/media/posts/abc_thumb.webp", ThumbnailURL("/media/posts/abc.jpg"))
	// No extension means nothing to rewrite.
	assert.Equal(t, "/media/posts/abc", ThumbnailURL("/media/posts/abc"))
}

// Package service holds application services that sit between handlers and
// the filesystem or other slow resources.
package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultMediaRoot     = "media"
	MaxImageUploadSizeMB = 10
	ThumbnailMaxSize     = 512
	WebPQuality          = 70
)

// ImageService stores post images under the media root and produces a WebP
// thumbnail next to each original.
type ImageService struct {
	mediaRoot      string
	maxUploadBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	mediaRoot := DefaultMediaRoot
	if cfg != nil && cfg.MediaRoot != "" {
		mediaRoot = cfg.MediaRoot
	}
	return &ImageService{
		mediaRoot:      mediaRoot,
		maxUploadBytes: MaxImageUploadSizeMB * 1024 * 1024,
	}
}

// SavePostImage validates and stores an uploaded post image. It returns the
// public URL of the original; the thumbnail lives next to it with a
// "_thumb.webp" suffix.
func (s *ImageService) SavePostImage(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", models.NewValidationError("No file uploaded")
	}
	if fh.Size > s.maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxImageUploadSizeMB))
	}

	f, err := fh.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes+1))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if int64(len(content)) > s.maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxImageUploadSizeMB))
	}
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}

	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", models.NewValidationError("Invalid image type")
	}
	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	name := uuid.NewString()
	originalRel := filepath.Join("posts", name+"."+extensionFor(format))
	thumbRel := filepath.Join("posts", name+"_thumb.webp")

	if err := writeBytesToFile(filepath.Join(s.mediaRoot, originalRel), content); err != nil {
		return "", models.NewInternalError(err)
	}

	thumb := resizeToFit(decoded, ThumbnailMaxSize, ThumbnailMaxSize)
	thumbBytes, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		_ = os.Remove(filepath.Join(s.mediaRoot, originalRel))
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(s.mediaRoot, thumbRel), thumbBytes); err != nil {
		_ = os.Remove(filepath.Join(s.mediaRoot, originalRel))
		return "", models.NewInternalError(err)
	}

	return "/media/" + filepath.ToSlash(originalRel), nil
}

// ThumbnailURL maps an original image URL to its thumbnail URL.
func ThumbnailURL(imageURL string) string {
	ext := filepath.Ext(imageURL)
	if ext == "" {
		return imageURL
	}
	return strings.TrimSuffix(imageURL, ext) + "_thumb.webp"
}

func extensionFor(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "jpg"
	case "png":
		return "png"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	default:
		return "bin"
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

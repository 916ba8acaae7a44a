package server

import (
	"bytes"
	"errors"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for upload sniffing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 10 * 1024 * 1024

var errInvalidImage = errors.New("Upload a valid image")

// saveUploadedImage stores the "image" form file under the upload directory
// and returns its media-relative path. A missing file is not an error; the
// returned path is empty.
func (s *Server) saveUploadedImage(c *fiber.Ctx, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// No file attached. Fiber has no sentinel for this, so any error
		// here is treated as an absent upload.
		return "", nil
	}
	if fileHeader.Size > maxUploadBytes {
		return "", errors.New("File too large (max 10MB)")
	}

	content, err := readUpload(fileHeader)
	if err != nil {
		return "", errInvalidImage
	}

	ext, ok := sniffImageExt(content)
	if !ok {
		return "", errInvalidImage
	}

	name := uuid.New().String() + ext
	rel := filepath.ToSlash(filepath.Join("posts", name))
	abs := filepath.Join(s.config.UploadDir, "posts", name)

	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, content, 0o600); err != nil {
		return "", err
	}
	return rel, nil
}

// removeUploadedImage deletes a previously saved upload, used when the
// submission fails after the file hit disk. Best-effort.
func (s *Server) removeUploadedImage(rel string) {
	if rel == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.config.UploadDir, filepath.FromSlash(rel)))
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// sniffImageExt verifies the payload decodes as a supported image and maps
// it to a file extension. The client's declared content type is ignored.
func sniffImageExt(content []byte) (string, bool) {
	if !strings.HasPrefix(http.DetectContentType(content), "image/") {
		return "", false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", false
	}
	switch format {
	case "jpeg":
		return ".jpg", true
	case "png":
		return ".png", true
	case "gif":
		return ".gif", true
	case "webp":
		return ".webp", true
	default:
		return "", false
	}
}

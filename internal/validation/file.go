package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// FileConstraints limits what an uploaded file may be.
type FileConstraints struct {
	MimeTypes  []string
	Extensions []string
	MaxSize    int64
}

// ImageConstraints accepts course cover images.
var ImageConstraints = FileConstraints{
	MimeTypes:  []string{"image/jpeg", "image/png", "image/webp"},
	Extensions: []string{".jpg", ".jpeg", ".png", ".webp"},
	MaxSize:    5 << 20,
}

// ValidateFile checks an upload against constraints and returns the content
// type sniffed from its first bytes. Failures are reported as a *FieldError
// for field.
func ValidateFile(field string, header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	if header.Size > constraints.MaxSize {
		return "", &FieldError{Field: field, Message: fmt.Sprintf("is too large (max %d MB)", constraints.MaxSize>>20)}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(constraints.Extensions, ext) {
		return "", &FieldError{Field: field, Message: fmt.Sprintf("has unsupported extension %q", ext)}
	}

	contentType, err := sniff(header)
	if err != nil {
		return "", err
	}
	if !slices.Contains(constraints.MimeTypes, contentType) {
		return "", &FieldError{Field: field, Message: fmt.Sprintf("has unsupported type %s", contentType)}
	}
	return contentType, nil
}

// sniff detects the content type from the file's magic numbers rather than
// the client-supplied header.
func sniff(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

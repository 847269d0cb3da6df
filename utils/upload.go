package utils

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an uploaded part exceeds the size limit.
var ErrFileTooLarge = fmt.Errorf("uploaded file exceeds size limit")

// StoredFileName builds a collision-proof stored name: a random UUID plus the
// single, lowercased extension of the original name. Anything before the last
// dot is discarded, so "report.pdf.exe" stores as "<uuid>.exe" and never
// keeps a double extension.
func StoredFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return uuid.NewString() + ext
}

// DetectMIME resolves the attachment MIME type from the multipart header,
// falling back to the extension when the client did not send one.
func DetectMIME(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		// strip any parameters like "; charset=utf-8"
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}

// SaveMultipartFile writes one multipart part to destPath enforcing maxBytes.
// On any failure the partially written file is removed.
func SaveMultipartFile(header *multipart.FileHeader, destPath string, maxBytes int64) (int64, error) {
	if header.Size > 0 && header.Size > maxBytes {
		return 0, ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, err
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dst, &io.LimitedReader{R: src, N: maxBytes + 1})
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(destPath)
		return 0, err
	}
	if written > maxBytes {
		_ = os.Remove(destPath)
		return 0, ErrFileTooLarge
	}
	return written, nil
}

// PublicFileURL joins the configured public base URL with a stored file path,
// normalizing path separators so clients always receive forward slashes.
func PublicFileURL(baseURL, filePath string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(filepath.ToSlash(filePath), "/")
}

package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/divanco-studio/backend/errs"
)

// Per-kind upload ceilings.
const (
	maxImageSize    = 10 * 1024 * 1024
	maxVideoSize    = 100 * 1024 * 1024
	maxDocumentSize = 20 * 1024 * 1024

	// ParseMultipartForm keeps this much in memory before spilling to disk.
	multipartMemory = 8 * 1024 * 1024
)

const (
	uploadKindImage    = "image"
	uploadKindVideo    = "video"
	uploadKindDocument = "document"
)

var allowedUploadTypes = []string{"image/*", "video/*", "application/pdf"}

// uploadedFile is a multipart upload spooled to a temp file, ready to be
// handed to the media gateway. The gateway removes the temp file.
type uploadedFile struct {
	Path     string
	Filename string
	MimeType string
	Size     int64
	Kind     string
}

// classifyUpload maps a declared content type to an upload kind and its
// size ceiling.
func classifyUpload(mimeType string) (kind string, maxSize int64, err error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return uploadKindImage, maxImageSize, nil
	case strings.HasPrefix(mimeType, "video/"):
		return uploadKindVideo, maxVideoSize, nil
	case mimeType == "application/pdf":
		return uploadKindDocument, maxDocumentSize, nil
	default:
		return "", 0, errs.NewUnsupportedMediaTypeError(mimeType, allowedUploadTypes)
	}
}

// saveUploadedFile pulls the "file" part out of a multipart request,
// validates its type and size and spools it to a uniquely named temp file.
func saveUploadedFile(r *http.Request) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxVideoSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, errs.NewBadRequestError("invalid multipart form: " + err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errs.NewMissingRequiredFieldError("file")
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	kind, maxSize, err := classifyUpload(mimeType)
	if err != nil {
		return nil, err
	}
	if header.Size > maxSize {
		return nil, errs.NewMaxBodySizeExceededError(maxSize)
	}

	path, err := spoolToTempFile(file, header)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to store uploaded file", err)
	}

	return &uploadedFile{
		Path:     path,
		Filename: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Kind:     kind,
	}, nil
}

func spoolToTempFile(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	pattern := fmt.Sprintf("upload-%d-*%s", time.Now().UnixNano(), ext)

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

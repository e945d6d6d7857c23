package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/bea-academy/academy-go-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// uploader validates submission and feedback attachments before handing
// them to storage. Accepted types follow the coursework policy: Word
// documents, PDF and plain text.
type uploader struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
}

func newUploader(storage FileStorage, maxSizeMB int, logger zerolog.Logger) *uploader {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploader{
		storage: storage,
		logger:  logger.With().Str("component", "uploader").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
	}
}

var allowedUploadTypes = []string{
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Store validates and uploads one attachment, returning its public URL.
func (u *uploader) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file.Size > u.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, u.maxSize+1)); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(buf.Len()) > u.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return "", ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	allowed := false
	for _, candidate := range allowedUploadTypes {
		if mime.Is(candidate) {
			allowed = true
			break
		}
	}
	if !allowed {
		observability.UploadRejected().WithLabelValues("type").Inc()
		u.logger.Warn().Str("mime", mime.String()).Str("file", file.Filename).Msg("rejected upload")
		return "", fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, mime.String())
	}

	name := sanitizeFileName(file.Filename)
	url, err := u.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	observability.UploadRequests().WithLabelValues(mime.String()).Inc()

	return url, nil
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

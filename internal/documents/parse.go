package documents

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/cognivex/pkg/pdftext"
)

// Parse builds a Document from uploaded bytes. The content type comes from
// the upload header when it is specific, otherwise it is sniffed from data.
// PDF text is decoded through the document's font encodings; text of either
// kind must end up as valid UTF-8.
func Parse(logger *slog.Logger, filename, headerContentType string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidFile)
	}

	contentType := normalizeContentType(detectContentType(headerContentType, data))

	doc := &Document{
		ID:          uuid.New(),
		Name:        sanitizeFilename(filename),
		Size:        int64(len(data)),
		ContentType: contentType,
		SHA256:      checksum(data),
		UploadedAt:  time.Now().UTC(),
	}

	switch contentType {
	case ContentTypeText:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: text is not valid utf-8", ErrInvalidFile)
		}
		doc.Content = strings.TrimSpace(string(data))
	case ContentTypePDF:
		result, err := pdftext.Extract(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		count := result.PageCount
		doc.PageCount = &count
		doc.Content = result.Text()

		if !utf8.ValidString(doc.Content) || strings.ContainsRune(doc.Content, 0) {
			return nil, fmt.Errorf("%w: pdf text is not valid utf-8", ErrUndecodableText)
		}
		if doc.Content == "" && len(result.Undecodable) > 0 {
			return nil, fmt.Errorf("%w: pages %v", ErrUndecodableText, result.Undecodable)
		}
		if len(result.Undecodable) > 0 {
			logger.Warn("skipped undecodable pdf pages", "name", doc.Name, "pages", result.Undecodable)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	if doc.Content == "" {
		return nil, ErrEmptyDocument
	}

	logger.Info(
		"document parsed",
		"name", doc.Name,
		"content_type", doc.ContentType,
		"size", doc.Size,
		"chars", len(doc.Content),
	)
	return doc, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func normalizeContentType(ct string) string {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mediaType
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package documents_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/cognivex/internal/documents"
	"github.com/JaimeStill/cognivex/pkg/pdftext/pdftexttest"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"explicit header", "text/plain; charset=utf-8"},
		{"sniffed from octet-stream", "application/octet-stream"},
		{"sniffed without header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := documents.Parse(discard(), "lease.txt", tt.header, []byte("  Tenant shall pay rent monthly.\n"))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if doc.Content != "Tenant shall pay rent monthly." {
				t.Errorf("content: got %q", doc.Content)
			}
			if doc.ContentType != documents.ContentTypeText {
				t.Errorf("content type: got %q", doc.ContentType)
			}
			if doc.Name != "lease.txt" {
				t.Errorf("name: got %q", doc.Name)
			}
			if doc.Size != 33 {
				t.Errorf("size: got %d, want 33", doc.Size)
			}
			if len(doc.SHA256) != 64 {
				t.Errorf("sha256: got %q", doc.SHA256)
			}
			if doc.PageCount != nil {
				t.Error("text documents carry no page count")
			}
		})
	}
}

func TestParseIdentity(t *testing.T) {
	a, err := documents.Parse(discard(), "a.txt", "text/plain", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := documents.Parse(discard(), "a.txt", "text/plain", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}

	if a.ID == b.ID {
		t.Error("each upload gets its own id")
	}
	if a.SHA256 != b.SHA256 {
		t.Error("identical bytes share a checksum")
	}
}

func TestParseSanitizesName(t *testing.T) {
	doc, err := documents.Parse(discard(), `C:\\Users\\me\\lease.txt`, "text/plain", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "lease.txt" {
		t.Errorf("name: got %q", doc.Name)
	}
}

func TestParseErrors(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")

	tests := []struct {
		name    string
		header  string
		data    []byte
		wantErr error
	}{
		{"empty upload", "text/plain", nil, documents.ErrInvalidFile},
		{"whitespace only", "text/plain", []byte(" \n\t "), documents.ErrEmptyDocument},
		{"invalid utf-8", "text/plain", []byte{0xff, 0xfe, 0xfd}, documents.ErrInvalidFile},
		{"image", "", png, documents.ErrUnsupportedType},
		{"declared docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("PK"), documents.ErrUnsupportedType},
		{"broken pdf", "application/pdf", []byte("%PDF-1.4 truncated"), documents.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := documents.Parse(discard(), "upload", tt.header, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePDF(t *testing.T) {
	tests := []struct {
		name    string
		content string
		font    []string
		want    string
	}{
		{
			name:    "standard font",
			content: "BT /F1 12 Tf (Tenant shall pay rent monthly.) Tj ET",
			font:    pdftexttest.Helvetica(),
			want:    "Tenant shall pay rent monthly.",
		},
		{
			name:    "winansi accents",
			content: `BT /F1 12 Tf (Caf\351 lease) Tj ET`,
			font:    pdftexttest.WinAnsi(),
			want:    "Café lease",
		},
		{
			name:    "cid font with tounicode",
			content: "BT /F1 12 Tf " + pdftexttest.Glyphs(1, 2, 3, 4, 3, 5) + " Tj ET",
			font:    pdftexttest.CID(map[uint16]rune{1: 'T', 2: 'e', 3: 'n', 4: 'a', 5: 't'}),
			want:    "Tenant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := documents.Parse(discard(), "lease.pdf", "application/pdf", pdftexttest.OnePage(tt.content, tt.font))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if doc.Content != tt.want {
				t.Errorf("content: got %q, want %q", doc.Content, tt.want)
			}
			if doc.PageCount == nil || *doc.PageCount != 1 {
				t.Errorf("page count: got %v", doc.PageCount)
			}
		})
	}
}

func TestParsePDFUndecodableFont(t *testing.T) {
	content := "BT /F1 12 Tf " + pdftexttest.Glyphs(0x37, 0x48, 0x4E, 0x44, 0x4F, 0x57) + " Tj ET"
	data := pdftexttest.OnePage(content, pdftexttest.CID(nil))

	doc, err := documents.Parse(discard(), "scan.pdf", "application/pdf", data)
	if !errors.Is(err, documents.ErrUndecodableText) {
		t.Fatalf("got %v, want ErrUndecodableText", err)
	}
	if doc != nil {
		t.Errorf("no document should be returned, got content %q", doc.Content)
	}
	if status := documents.MapHTTPStatus(err); status != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", status)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{documents.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{documents.ErrEmptyDocument, http.StatusUnprocessableEntity},
		{documents.ErrUndecodableText, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", documents.ErrInvalidFile), http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := documents.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestClone(t *testing.T) {
	n := 3
	doc := &documents.Document{Name: "a.pdf", PageCount: &n}
	c := doc.Clone()

	*c.PageCount = 9
	c.Name = "b.pdf"

	if *doc.PageCount != 3 || doc.Name != "a.pdf" {
		t.Error("clone shares state with original")
	}

	var nilDoc *documents.Document
	if nilDoc.Clone() != nil {
		t.Error("nil clone should be nil")
	}
}

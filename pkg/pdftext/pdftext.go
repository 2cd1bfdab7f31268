// Package pdftext extracts plain text from PDF documents.
//
// pdfcpu validates the document and reports its page count. Page text is
// decoded through each font's encoding (ToUnicode CMaps, WinAnsi, MacRoman)
// by github.com/ledongthuc/pdf. Pages whose glyphs cannot be mapped back to
// Unicode are reported as undecodable instead of returned as glyph IDs.
package pdftext

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidPDF indicates the input could not be read as a PDF document.
var ErrInvalidPDF = errors.New("invalid pdf")

// Result holds the extracted text of a document, one entry per page.
type Result struct {
	PageCount int
	Pages     []string

	// Undecodable holds the 1-based numbers of pages whose text uses a font
	// encoding with no path back to Unicode.
	Undecodable []int
}

// Text joins all page text, separated by blank lines.
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Extract reads the PDF of the given size from r and returns the text of
// every page. Pages whose content cannot be extracted contribute an empty
// string.
func Extract(r io.ReaderAt, size int64) (*Result, error) {
	conf := model.NewDefaultConfiguration()

	ctx, err := api.ReadContext(io.NewSectionReader(r, 0, size), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}

	result := &Result{
		PageCount: ctx.PageCount,
		Pages:     make([]string, ctx.PageCount),
	}

	for i := 1; i <= ctx.PageCount && i <= doc.NumPage(); i++ {
		raw, err := pageText(doc, i)
		if err != nil {
			continue
		}
		text, ok := clean(raw)
		if !ok {
			result.Undecodable = append(result.Undecodable, i)
			continue
		}
		result.Pages[i-1] = text
	}

	return result, nil
}

func pageText(doc *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()

	p := doc.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// clean drops replacement and control runes from decoded page text. It
// reports false when more than a tenth of the visible runes were dropped,
// which is what a font without a Unicode mapping produces.
func clean(s string) (string, bool) {
	var (
		b       strings.Builder
		visible int
		dropped int
	)

	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == ' ':
			b.WriteRune(r)
		case r == '\r':
			b.WriteByte('\n')
		case r == utf8.RuneError || unicode.IsControl(r):
			visible++
			dropped++
		default:
			visible++
			b.WriteRune(r)
		}
	}

	if dropped*10 > visible {
		return "", false
	}
	return b.String(), true
}

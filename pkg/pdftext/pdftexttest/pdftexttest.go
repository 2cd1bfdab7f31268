// Package pdftexttest assembles small single-page PDFs for extraction tests.
package pdftexttest

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// Helvetica is a standard Type1 font with the built-in encoding.
func Helvetica() []string {
	return []string{"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"}
}

// WinAnsi is a standard Type1 font using WinAnsiEncoding.
func WinAnsi() []string {
	return []string{"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"}
}

// CID is a Type0 font with Identity-H encoding, the layout most producers
// use for embedded TrueType subsets. Two-byte glyph IDs map to runes through
// a ToUnicode CMap built from glyphs; a nil map omits the CMap.
func CID(glyphs map[uint16]rune) []string {
	font := "<< /Type /Font /Subtype /Type0 /BaseFont /ArialMT /Encoding /Identity-H /DescendantFonts [6 0 R]"
	if glyphs != nil {
		font += " /ToUnicode 8 0 R"
	}
	font += " >>"

	objects := []string{
		font,
		"<< /Type /Font /Subtype /CIDFontType2 /BaseFont /ArialMT /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /FontDescriptor 7 0 R >>",
		"<< /Type /FontDescriptor /FontName /ArialMT /Flags 32 /FontBBox [0 -200 1000 900] /ItalicAngle 0 /Ascent 900 /Descent -200 /CapHeight 700 /StemV 80 >>",
	}
	if glyphs != nil {
		objects = append(objects, stream(toUnicode(glyphs)))
	}
	return objects
}

// Glyphs encodes glyph IDs as a hex string operand.
func Glyphs(ids ...uint16) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, id := range ids {
		fmt.Fprintf(&b, "%04X", id)
	}
	b.WriteByte('>')
	return b.String()
}

// OnePage returns a PDF with one page showing content. font[0] is bound to
// /F1 and any further entries become objects 6, 7, ... in order.
func OnePage(content string, font []string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		stream(content),
	}
	objects = append(objects, font...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func stream(data string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(data), data)
}

func toUnicode(glyphs map[uint16]rune) string {
	ids := make([]uint16, 0, len(glyphs))
	for id := range glyphs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var b strings.Builder
	b.WriteString("/CIDInit /ProcSet findresource begin\n")
	b.WriteString("12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	fmt.Fprintf(&b, "%d beginbfchar\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "<%04X> <%04X>\n", id, glyphs[id])
	}
	b.WriteString("endbfchar\nendcmap\n")
	b.WriteString("CMapName currentdict /CMap defineresource pop\nend\nend")
	return b.String()
}

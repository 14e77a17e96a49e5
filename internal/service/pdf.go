package service

import (
	"bytes"
	"fmt"
	"strings"
)

// renderPDF writes a single-page PDF with the report title and one text
// line per table row. Plain Helvetica, no real layout; it exists so a
// report download in pdf format opens in any viewer. Rows past the bottom
// of the page are dropped.
func renderPDF(title string, rows [][]string) ([]byte, error) {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 14 Tf\n50 780 Td\n16 TL\n")
	content.WriteString(fmt.Sprintf("(%s) Tj\n", pdfEscape(title)))
	content.WriteString("/F1 10 Tf\nT* T*\n")

	const maxLines = 58
	for i, row := range rows {
		if i >= maxLines {
			content.WriteString("T*\n(...) Tj\n")
			break
		}
		content.WriteString(fmt.Sprintf("T*\n(%s) Tj\n", pdfEscape(strings.Join(row, "  "))))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)
	return buf.Bytes(), nil
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

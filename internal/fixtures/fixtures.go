// Package fixtures builds small PDF and DOCX résumés for tests.
package fixtures

import (
	"archive/zip"
	"bytes"
	"html"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// Resume is a complete sample résumé, one entry per line.
var Resume = []string{
	"Jane Doe",
	"jane.doe@example.com | +1 (415) 555-0100",
	"San Francisco, CA",
	"linkedin.com/in/janedoe | github.com/janedoe",
	"",
	"Summary",
	"Backend engineer focused on data pipelines.",
	"",
	"Experience",
	"Senior Software Engineer at Acme Corp",
	"Jan 2020 - Present",
	"- Built ingestion services in Go",
	"- Led migration to Kubernetes",
	"Software Engineer, Globex",
	"06/2016 - 12/2019",
	"- Maintained billing APIs",
	"",
	"Education",
	"B.S. in Computer Science",
	"State University",
	"2012 - 2016",
	"GPA: 3.7/4.0",
	"",
	"Skills",
	"Go, Python, PostgreSQL, Docker, Kubernetes, Communication",
	"",
	"Certifications",
	"Certified Kubernetes Administrator - CNCF, 2021",
	"",
	"Languages",
	"English (Native), Spanish (Professional)",
}

// DOCX returns a minimal .docx package with one paragraph per line.
func DOCX(lines ...string) []byte {
	var body bytes.Buffer
	for _, line := range lines {
		body.WriteString(`<w:p w:rsidR="00A1"><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t xml:space="preserve">`)
		body.WriteString(html.EscapeString(line))
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	files := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`},
	}
	for _, f := range files {
		fw, _ := w.Create(f.name)
		_, _ = fw.Write([]byte(f.body))
	}
	_ = w.Close()
	return buf.Bytes()
}

// PDF returns a single-font PDF with one text line per entry.
func PDF(lines ...string) []byte {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 11)
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	var buf bytes.Buffer
	_ = pdf.Output(&buf)
	return buf.Bytes()
}

// CorruptPDF has a PDF signature but no readable structure.
func CorruptPDF() []byte {
	return []byte("%PDF-1.4\n% garbage that is not a document\n")
}

// Write stores content at dir/name, creating parent directories, and returns the path.
func Write(dir, name string, content []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return path, nil
}

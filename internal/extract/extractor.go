// Package extract converts PDF and DOCX bytes into plain text.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/hyperjump/cvingest/internal/errs"
)

// Format is a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Formats lists every supported format.
var Formats = []Format{FormatPDF, FormatDOCX}

// Ext returns the file extension for f, including the leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats {
		if f.Ext() == ext {
			return f, true
		}
	}
	return "", false
}

// TextConverter turns the bytes of one document format into text.
type TextConverter interface {
	Convert(content []byte) (string, error)
}

// Extractor dispatches to the converter registered for each format.
type Extractor struct {
	converters map[Format]TextConverter
}

// NewExtractor returns an Extractor with the PDF and DOCX converters.
func NewExtractor() *Extractor {
	return &Extractor{
		converters: map[Format]TextConverter{
			FormatPDF:  pdfConverter{},
			FormatDOCX: docxConverter{},
		},
	}
}

// ExtractBytes converts content of format f to normalized text. Content that
// does not look like f, or that the converter cannot read, yields an
// errs.ErrCorruptDocument error.
func (e *Extractor) ExtractBytes(content []byte, f Format) (string, error) {
	conv, ok := e.converters[f]
	if !ok {
		return "", errs.New(errs.ErrExtractionUnsupported, "extract", "", string(f))
	}
	if err := sniff(content, f); err != nil {
		return "", errs.Wrap(errs.ErrCorruptDocument, "extract", "", err)
	}
	text, err := conv.Convert(content)
	if err != nil {
		return "", errs.Wrap(errs.ErrCorruptDocument, "extract", "", err)
	}
	return Normalize(text), nil
}

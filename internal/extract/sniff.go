package extract

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// sniff checks that content is plausibly of format f before handing it to a converter.
func sniff(content []byte, f Format) error {
	if len(content) == 0 {
		return fmt.Errorf("empty %s document", f)
	}
	mt := mimetype.Detect(content)
	switch f {
	case FormatPDF:
		if !mt.Is("application/pdf") {
			return fmt.Errorf("content is %s, not a PDF", mt.String())
		}
	case FormatDOCX:
		for m := mt; m != nil; m = m.Parent() {
			if m.Is("application/zip") {
				return nil
			}
		}
		return fmt.Errorf("content is %s, not a DOCX package", mt.String())
	}
	return nil
}

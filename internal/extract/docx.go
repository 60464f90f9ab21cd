package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

var (
	// paragraphTag matches a whole <w:p> element, with or without attributes.
	paragraphTag = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>|<w:p/>`)
	// runToken matches text nodes, tabs and explicit breaks inside a paragraph.
	runToken = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>|<w:tab/>|<w:br[^>]*/>`)

	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

type docxConverter struct{}

// Convert returns one line per paragraph of the main document part.
func (docxConverter) Convert(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a zip archive: %w", err)
	}

	docPath := docxDocumentXMLPath
	if ct, err := readZipFile(zr, contentTypesPath); err == nil {
		if p := mainPartName(string(ct)); p != "" {
			docPath = p
		}
	}

	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", err
	}
	return paragraphsText(string(docXML)), nil
}

func mainPartName(contentTypes string) string {
	if m := partNameRe.FindStringSubmatch(contentTypes); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := partNameRe2.FindStringSubmatch(contentTypes); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}

func paragraphsText(docXML string) string {
	var b strings.Builder
	for _, p := range paragraphTag.FindAllString(docXML, -1) {
		for _, tok := range runToken.FindAllStringSubmatch(p, -1) {
			switch {
			case strings.HasPrefix(tok[0], "<w:tab"):
				b.WriteByte('\t')
			case strings.HasPrefix(tok[0], "<w:br"):
				b.WriteByte('\n')
			default:
				b.WriteString(html.UnescapeString(tok[1]))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

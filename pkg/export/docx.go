package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// The DOCX writer emits the minimal OOXML package a WordprocessingML reader
// needs: content types, the package relationship, and the document part.

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func writeDocx(w io.Writer, report string) error {
	archive := zip.NewWriter(w)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", documentXML(report)},
	}
	for _, part := range parts {
		f, err := archive.Create(part.name)
		if err != nil {
			return fmt.Errorf("create docx part %s: %w", part.name, err)
		}
		if _, err := f.Write(part.data); err != nil {
			return fmt.Errorf("write docx part %s: %w", part.name, err)
		}
	}
	return archive.Close()
}

// headingSize maps a heading level to a run size in half-points.
var headingSize = map[int]int{1: 36, 2: 30, 3: 26}

func documentXML(report string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	buf.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, block := range parseMarkdown(report) {
		writeParagraph(&buf, block)
	}

	buf.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`)
	buf.WriteString(`</w:body></w:document>`)
	return buf.Bytes()
}

func writeParagraph(buf *bytes.Buffer, block mdBlock) {
	buf.WriteString(`<w:p>`)

	text := block.Text
	if block.Bullet {
		text = "• " + text
	}
	if text != "" {
		buf.WriteString(`<w:r>`)
		if size, ok := headingSize[block.Level]; ok {
			fmt.Fprintf(buf, `<w:rPr><w:b/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`, size, size)
		}
		buf.WriteString(`<w:t xml:space="preserve">`)
		xml.EscapeText(buf, []byte(text))
		buf.WriteString(`</w:t></w:r>`)
	}

	buf.WriteString(`</w:p>`)
}

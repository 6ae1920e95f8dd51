package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// parseDOCX emits the text of every body paragraph followed by a newline.
func parseDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = r.Close() }()

	paragraphs, err := docxParagraphs(r.Editable().GetContent())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range paragraphs {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// docxParagraphs walks word/document.xml and returns the run text of each top-level body paragraph.
// Paragraphs nested in tables are not part of the body paragraph list.
func docxParagraphs(documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		stack      []string
		paragraphs []string
		cur        strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			switch {
			case t.Name.Local == "p" && len(stack) == 3 && stack[1] == "body":
				inPara = true
				cur.Reset()
			case inPara && t.Name.Local == "t":
				inText = true
			case inPara && t.Name.Local == "tab":
				cur.WriteByte('\t')
			case inPara && (t.Name.Local == "br" || t.Name.Local == "cr"):
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "t":
				inText = false
			case inPara && t.Name.Local == "p" && len(stack) == 3:
				paragraphs = append(paragraphs, cur.String())
				inPara = false
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paragraphs, nil
}

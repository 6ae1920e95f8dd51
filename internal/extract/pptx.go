package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

const (
	pptxPresentationPath = "ppt/presentation.xml"
	pptxRelsPath         = "ppt/_rels/presentation.xml.rels"
)

type pptxPresentation struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type pptxRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type pptxSlide struct {
	Shapes []pptxShape `xml:"cSld>spTree>sp"`
}

type pptxShape struct {
	TxBody *struct {
		Paragraphs []pptxParagraph `xml:"p"`
	} `xml:"txBody"`
}

type pptxParagraph struct {
	Items []struct {
		XMLName xml.Name
		Text    string `xml:"t"`
	} `xml:",any"`
}

func (p pptxParagraph) text() string {
	var sb strings.Builder
	for _, it := range p.Items {
		switch it.XMLName.Local {
		case "r", "fld":
			sb.WriteString(it.Text)
		case "br":
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// parsePPTX emits the text of every text-bearing shape, slide by slide in presentation order.
func parsePPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var sb strings.Builder
	for _, name := range pptxSlideOrder(files) {
		var slide pptxSlide
		if err := readZipXML(files[name], &slide); err != nil {
			return "", fmt.Errorf("slide %s: %w", name, err)
		}
		for _, shape := range slide.Shapes {
			if shape.TxBody == nil {
				continue
			}
			lines := make([]string, 0, len(shape.TxBody.Paragraphs))
			for _, p := range shape.TxBody.Paragraphs {
				lines = append(lines, p.text())
			}
			sb.WriteString(strings.Join(lines, "\n"))
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// pptxSlideOrder resolves slide part names in presentation order. When the presentation part or its
// relationships cannot be read, slides are ordered by their numeric file suffix.
func pptxSlideOrder(files map[string]*zip.File) []string {
	if ordered := pptxOrderFromPresentation(files); len(ordered) > 0 {
		return ordered
	}

	var names []string
	for name := range files {
		if slideNumber(name) > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return slideNumber(names[i]) < slideNumber(names[j]) })
	return names
}

func pptxOrderFromPresentation(files map[string]*zip.File) []string {
	var pres pptxPresentation
	if err := readZipXML(files[pptxPresentationPath], &pres); err != nil {
		return nil
	}
	var rels pptxRelationships
	if err := readZipXML(files[pptxRelsPath], &rels); err != nil {
		return nil
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = r.Target
	}

	names := make([]string, 0, len(pres.SlideIDs))
	for _, s := range pres.SlideIDs {
		target, ok := targets[s.RID]
		if !ok {
			continue
		}
		name := path.Join("ppt", target)
		if strings.HasPrefix(target, "/") {
			name = strings.TrimPrefix(target, "/")
		}
		if _, ok := files[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// slideNumber returns N for "ppt/slides/slideN.xml", 0 otherwise.
func slideNumber(name string) int {
	rest, ok := strings.CutPrefix(name, "ppt/slides/slide")
	if !ok {
		return 0
	}
	rest, ok = strings.CutSuffix(rest, ".xml")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

func readZipXML(f *zip.File, v any) error {
	if f == nil {
		return fmt.Errorf("part not found")
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := xml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", f.Name, err)
	}
	return nil
}

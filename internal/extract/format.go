package extract

import (
	"mime"
	"path"
	"strings"
)

// Format is one of the supported document variants.
type Format string

// Supported formats.
const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatXLSX     Format = "xlsx"
	FormatPPTX     Format = "pptx"
	FormatMarkdown Format = "markdown"
	FormatPlain    Format = "plain"
)

// Declared content types.
const (
	ContentTypePDF      = "application/pdf"
	ContentTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	ContentTypeMarkdown = "text/markdown"
	ContentTypePlain    = "text/plain"
)

var byContentType = map[string]Format{
	ContentTypePDF:      FormatPDF,
	ContentTypeDOCX:     FormatDOCX,
	ContentTypeXLSX:     FormatXLSX,
	ContentTypePPTX:     FormatPPTX,
	ContentTypeMarkdown: FormatMarkdown,
	"text/x-markdown":   FormatMarkdown,
	ContentTypePlain:    FormatPlain,
}

var bySuffix = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".xlsx":     FormatXLSX,
	".pptx":     FormatPPTX,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatPlain,
}

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatXLSX, FormatPPTX, FormatMarkdown, FormatPlain}
}

// Detect selects a format from the declared content type, falling back to the filename suffix.
// ok is false when neither signal names a supported format; the returned format is then FormatPlain,
// which is what Extract uses for unrecognized input.
func Detect(contentType, filename string) (Format, bool) {
	if f, ok := byContentType[normalizeContentType(contentType)]; ok {
		return f, true
	}
	if f, ok := bySuffix[strings.ToLower(path.Ext(filename))]; ok {
		return f, true
	}
	return FormatPlain, false
}

// normalizeContentType strips media type parameters and lower-cases the type.
func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

var contentTypeByFormat = map[Format]string{
	FormatPDF:      ContentTypePDF,
	FormatDOCX:     ContentTypeDOCX,
	FormatXLSX:     ContentTypeXLSX,
	FormatPPTX:     ContentTypePPTX,
	FormatMarkdown: ContentTypeMarkdown,
	FormatPlain:    ContentTypePlain,
}

// ContentTypeFor guesses the content type of a local file from its name. Supported suffixes map to
// their canonical type regardless of the host MIME tables.
func ContentTypeFor(filename string) string {
	if f, ok := bySuffix[strings.ToLower(path.Ext(filename))]; ok {
		return contentTypeByFormat[f]
	}
	return mime.TypeByExtension(path.Ext(filename))
}

// Supported reports whether filename or contentType names a supported format.
func Supported(contentType, filename string) bool {
	_, ok := Detect(contentType, filename)
	return ok
}

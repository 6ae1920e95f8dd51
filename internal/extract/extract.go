// Package extract converts raw document bytes into plain text.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/metrics"
)

// errParserPanic marks a recovered panic inside a format parser.
var errParserPanic = errors.New("parser panic")

type parseFunc func(data []byte) (string, error)

// Extractor dispatches raw bytes to the parser of their format. Extraction never fails:
// parser errors and panics are logged, counted and degrade to empty text.
type Extractor struct {
	logger  *zap.Logger
	parsers map[Format]parseFunc
}

// New creates an extractor with every supported format registered.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		logger: logger,
		parsers: map[Format]parseFunc{
			FormatPDF:      parsePDF,
			FormatDOCX:     parseDOCX,
			FormatXLSX:     parseXLSX,
			FormatPPTX:     parsePPTX,
			FormatMarkdown: parseMarkdown,
			FormatPlain:    parsePlain,
		},
	}
}

// Supports reports whether the content type or filename names a supported format.
func (e *Extractor) Supports(contentType, filename string) bool {
	_, ok := Detect(contentType, filename)
	return ok
}

// Extract returns the trimmed plain text of data. Unrecognized types are decoded as UTF-8 text.
func (e *Extractor) Extract(data []byte, contentType, filename string) string {
	format, _ := Detect(contentType, filename)
	text, err := e.parse(format, data)
	if err != nil {
		e.logger.Warn("text extraction failed",
			zap.String("format", string(format)),
			zap.String("filename", filename),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		metrics.ExtractionFailuresTotal.WithLabelValues(string(format)).Inc()
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *Extractor) parse(format Format, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", errParserPanic, r)
		}
	}()

	parse, ok := e.parsers[format]
	if !ok {
		parse = parsePlain
	}
	return parse(data)
}

package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sqlProbe recognizes statement keywords at the start of a line.
var sqlProbe = regexp.MustCompile(`(?im)^\s*(SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM|CREATE\s+(TABLE|INDEX|VIEW)|ALTER\s+TABLE|DROP\s+TABLE|WITH)\b`)

// DetectFileType decides which analyzer handles an upload. A known extension
// decides outright. A file without an extension is sniffed: JSON, then CSV,
// then an SQL keyword probe, then plain text. Any other extension, binary
// content, or a type missing from enabled fails with ErrUnsupportedFileType.
// A nil enabled set allows every registered type.
func DetectFileType(filename string, content []byte, enabled map[FileType]bool) (AnalyzerDefinition, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var ft FileType
	if ext != "" {
		def, ok := lookupExtension(ext)
		if !ok {
			return AnalyzerDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
		}
		ft = def.Info.Type
	} else {
		sniffed, ok := sniff(content)
		if !ok {
			return AnalyzerDefinition{}, fmt.Errorf("%w: unrecognized content in %q", ErrUnsupportedFileType, filename)
		}
		ft = sniffed
	}

	if enabled != nil && !enabled[ft] {
		return AnalyzerDefinition{}, fmt.Errorf("%w: %s is disabled", ErrUnsupportedFileType, ft)
	}
	def, ok := Lookup(ft)
	if !ok {
		return AnalyzerDefinition{}, fmt.Errorf("%w: no analyzer for %s", ErrUnsupportedFileType, ft)
	}
	return def, nil
}

func sniff(content []byte) (FileType, bool) {
	m := mimetype.Detect(content)
	switch {
	case m.Is("application/json"):
		return FileTypeJSON, true
	case m.Is("text/csv"):
		return FileTypeCSV, true
	}

	if !isText(m) {
		return "", false
	}
	if sqlProbe.Match(content) {
		return FileTypeSQL, true
	}
	return FileTypeText, true
}

func isText(m *mimetype.MIME) bool {
	for mt := m; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

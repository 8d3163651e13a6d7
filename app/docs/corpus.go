package docs

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Settings configures corpus discovery: a root directory plus basename
// glob patterns for files likely to contain policy/prompt documents.
type Settings struct {
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"`
}

// Section is one headed span of a document.
type Section struct {
	Header  string
	Content string
}

// Document is a parsed corpus file: an ordered sequence of sections.
type Document struct {
	Path     string
	Sections []Section
}

func (d Document) Basename() string {
	return filepath.Base(d.Path)
}

// PreambleHeader labels content appearing before the first heading.
const PreambleHeader = "PREAMBLE"

var headingPattern = regexp.MustCompile(`^#{1,3}\s+`)

type Corpus struct {
	settings Settings
}

func NewCorpus(settings Settings) *Corpus {
	return &Corpus{settings: settings}
}

// Load discovers and parses all corpus documents. Unreadable files are
// logged and skipped; the result is ordered by path so downstream
// output is deterministic.
func (c *Corpus) Load() []Document {
	paths := c.discover()

	documents := make([]Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Failed to read corpus document, skipping", "path", path, "error", err)
			continue
		}

		documents = append(documents, Document{
			Path:     path,
			Sections: ParseSections(decodeBestEffort(data)),
		})
	}

	return documents
}

func (c *Corpus) discover() []string {
	matched := make(map[string]struct{})

	err := filepath.WalkDir(c.settings.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Failed to walk corpus directory", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		for _, pattern := range c.settings.Patterns {
			if ok, _ := filepath.Match(pattern, d.Name()); ok {
				matched[path] = struct{}{}
				break
			}
		}
		return nil
	})
	if err != nil {
		slog.Warn("Failed to discover corpus documents", "dir", c.settings.Dir, "error", err)
	}

	paths := make([]string, 0, len(matched))
	for path := range matched {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths
}

// ParseSections splits a document on markdown-style heading lines (one
// to three leading marker characters followed by whitespace). Content
// before the first heading becomes the sentinel PREAMBLE section.
// Section headers keep their marker characters.
func ParseSections(content string) []Section {
	var sections []Section

	currentHeader := PreambleHeader
	var currentLines []string

	for _, line := range strings.Split(content, "\n") {
		if headingPattern.MatchString(line) {
			if len(currentLines) > 0 {
				sections = append(sections, Section{
					Header:  currentHeader,
					Content: strings.TrimSpace(strings.Join(currentLines, "\n")),
				})
			}
			currentHeader = strings.TrimSpace(line)
			currentLines = nil
			continue
		}
		currentLines = append(currentLines, line)
	}

	if len(currentLines) > 0 {
		sections = append(sections, Section{
			Header:  currentHeader,
			Content: strings.TrimSpace(strings.Join(currentLines, "\n")),
		})
	}

	return sections
}

// decodeBestEffort returns valid UTF-8 text, substituting rather than
// failing on undecodable input (corpus files are not always clean).
func decodeBestEffort(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}

	return string(decoded)
}

// Package corpus loads the markdown document corpus from disk.
// Each file carries optional YAML frontmatter (id, title, tags, date,
// authority) followed by a body split into sections on markdown
// headings. Loading happens once at process start; the resulting
// documents are read-only afterwards.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/logger"
)

// sectionIDLen is the length of a section id derived from the slug.
const sectionIDLen = 8

var frontmatterPattern = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n(.*)\z`)

type frontmatter struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Tags      []string `yaml:"tags"`
	Date      string   `yaml:"date"`
	Authority float64  `yaml:"authority"`
}

// LoadDir reads every *.md file in dir, in filename order, and returns
// the parsed documents. Files that fail to parse abort the load; a
// corpus with duplicate document ids is rejected.
func LoadDir(dir string) ([]domain.Document, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("listing corpus dir: %w", err)
	}
	sort.Strings(entries)

	docs := make([]domain.Document, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, path := range entries {
		doc, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if prev, dup := seen[doc.ID]; dup {
			return nil, fmt.Errorf("%w: document id %q in both %s and %s",
				domain.ErrInvalidInput, doc.ID, prev, path)
		}
		seen[doc.ID] = path
		docs = append(docs, *doc)
	}

	logger.Info("Corpus loaded: %d documents from %s", len(docs), dir)
	return docs, nil
}

// LoadFile parses one markdown file into a document.
func LoadFile(path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fm, body := splitFrontmatter(string(raw))

	var meta frontmatter
	if fm != "" {
		if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
	}

	id := meta.ID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	title := meta.Title
	if title == "" {
		title = id
	}
	authority := meta.Authority
	if authority == 0 {
		authority = 0.5
	}

	return &domain.Document{
		ID:        id,
		Title:     title,
		Tags:      meta.Tags,
		Date:      meta.Date,
		Authority: authority,
		Sections:  ParseSections(body),
	}, nil
}

func splitFrontmatter(raw string) (frontmatter, body string) {
	m := frontmatterPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", raw
	}
	return m[1], m[2]
}

// ParseSections splits a markdown body into sections on heading lines.
// Section ids are the upper-cased slug of the heading truncated to
// eight characters, de-duplicated with a numeric suffix when headings
// collide. Text before the first heading is not addressable and is
// dropped. Body offsets are byte positions into the input and never
// overlap.
func ParseSections(body string) []domain.Section {
	var sections []domain.Section
	usedIDs := make(map[string]int)

	var heading string
	bodyStart := -1
	offset := 0

	flush := func(end int) {
		if heading == "" {
			return
		}
		slug := Slugify(heading)
		id := sectionID(slug, usedIDs)
		text := strings.TrimSpace(body[bodyStart:end])
		sections = append(sections, domain.Section{
			ID:       id,
			Heading:  heading,
			Anchor:   slug,
			Body:     text,
			Start:    bodyStart,
			End:      end,
			Position: len(sections),
		})
	}

	for _, line := range strings.SplitAfter(body, "\n") {
		trimmed := strings.TrimRight(line, "\r\n")
		if isHeading(trimmed) {
			flush(offset)
			heading = strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
			bodyStart = offset + len(line)
		}
		offset += len(line)
	}
	flush(len(body))

	return sections
}

func isHeading(line string) bool {
	rest := strings.TrimLeft(line, "#")
	return len(rest) < len(line) && strings.HasPrefix(rest, " ")
}

func sectionID(slug string, used map[string]int) string {
	id := strings.ToUpper(slug)
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > sectionIDLen {
		id = id[:sectionIDLen]
	}
	if id == "" {
		id = "SECTION"
	}
	used[id]++
	if n := used[id]; n > 1 {
		return fmt.Sprintf("%s-%d", id, n)
	}
	return id
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases text and collapses every non-alphanumeric run
// into a single hyphen. Headings map deterministically onto anchors,
// which keeps citation locators stable across requests.
func Slugify(text string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}

package mdstream

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a heading of a converted Markdown document.
type Section struct {
	Level  int    `json:"level" yaml:"level"`
	Title  string `json:"title" yaml:"title"`
	Anchor string `json:"anchor" yaml:"anchor"`
}

var sectionParser = goldmark.New().Parser()

// ExtractSections parses markdown and returns its headings in document
// order. Anchors are URL-safe; repeated anchors get numeric suffixes.
// A leading YAML frontmatter block is skipped, and headings inside code
// blocks are never returned.
func ExtractSections(markdown string) []Section {
	markdown = skipFrontmatter(markdown)
	if markdown == "" {
		return nil
	}

	src := []byte(markdown)
	doc := sectionParser.Parse(text.NewReader(src))

	var sections []Section
	seen := make(map[string]int)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		title := headingText(h, src)
		anchor := generateAnchor(title)
		if count, ok := seen[anchor]; ok {
			seen[anchor]++
			anchor += "-" + strconv.Itoa(count)
		} else {
			seen[anchor] = 1
		}
		sections = append(sections, Section{Level: h.Level, Title: title, Anchor: anchor})
		return ast.WalkSkipChildren, nil
	})
	return sections
}

// FirstHeading returns the title of the first heading, or "" if there is none.
func FirstHeading(markdown string) string {
	if s := ExtractSections(markdown); len(s) > 0 {
		return s[0].Title
	}
	return ""
}

func skipFrontmatter(markdown string) string {
	if !strings.HasPrefix(markdown, "---\n") {
		return markdown
	}
	rest := markdown[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return markdown
	}
	rest = rest[end+len("\n---"):]
	if rest != "" && rest[0] != '\n' {
		return markdown
	}
	return rest
}

func headingText(h *ast.Heading, src []byte) string {
	var sb strings.Builder
	lines := h.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimSpace(sb.String())
}

// generateAnchor lowercases title, joins words with hyphens and drops
// everything that is not a letter or digit.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}

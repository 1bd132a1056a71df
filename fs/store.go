// Package fs writes converted documents as Markdown files.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/mdstream"
	"gopkg.in/yaml.v3"
)

// Ensure FileStore implements mdstream.DocumentStore at compile time.
var _ mdstream.DocumentStore = (*FileStore)(nil)

// FileStore implements mdstream.DocumentStore with atomic update semantics.
// Documents are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes the document under a path derived from its source URL.
func (s *FileStore) Save(ctx context.Context, doc *mdstream.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	relPath, err := URLToPath(doc.SourceURL)
	if err != nil {
		return err
	}

	content, err := FormatDocument(doc)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit replaces the output directory with everything saved so far.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything saved so far.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// URLToPath converts a source URL to a relative, slash-separated file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", mdstream.Errorf(mdstream.EINVALID, "invalid source URL %q", rawURL)
	}

	p := u.Path
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", mdstream.Errorf(mdstream.EINVALID, "path traversal in %q", rawURL)
		}
	}

	dir := strings.HasSuffix(p, "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	switch {
	case p == "":
		return "index.md", nil
	case dir:
		return p + "/index.md", nil
	default:
		return p + ".md", nil
	}
}

// FormatDocument renders the document with YAML frontmatter. Frontmatter the
// converter already put at the top of the content is merged, not repeated.
func FormatDocument(doc *mdstream.Document) (string, error) {
	meta := map[string]any{}
	body := doc.Content
	if front, rest, ok := splitFrontmatter(doc.Content); ok {
		if err := yaml.Unmarshal([]byte(front), &meta); err == nil {
			body = rest
		} else {
			meta = map[string]any{}
		}
	}

	meta["source"] = doc.SourceURL
	if _, ok := meta["title"]; !ok && doc.Title != "" {
		meta["title"] = doc.Title
	}
	if doc.Strategy != "" {
		meta["strategy"] = string(doc.Strategy)
	}
	if !doc.ConvertedAt.IsZero() {
		meta["converted"] = doc.ConvertedAt.Format("2006-01-02")
	}

	out, err := yaml.Marshal(meta)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimLeft(body, "\n"))
	return b.String(), nil
}

// splitFrontmatter separates a leading "---" fenced block from the rest.
func splitFrontmatter(s string) (front, rest string, ok bool) {
	if !strings.HasPrefix(s, "---\n") {
		return "", s, false
	}
	body := s[4:]
	for i := 0; ; {
		j := strings.Index(body[i:], "---")
		if j < 0 {
			return "", s, false
		}
		at := i + j
		end := at + 3
		if (at == 0 || body[at-1] == '\n') && (end == len(body) || body[end] == '\n') {
			return body[:at], body[end:], true
		}
		i = end
	}
}

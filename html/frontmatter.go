package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
	"gopkg.in/yaml.v3"
)

// Frontmatter collects document metadata from <head> and emits it as a YAML
// frontmatter block when the head closes.
type Frontmatter struct {
	meta  frontmatter
	title strings.Builder
}

type frontmatter struct {
	Title       string            `yaml:"title,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Canonical   string            `yaml:"canonical,omitempty"`
	Author      string            `yaml:"author,omitempty"`
	Keywords    []string          `yaml:"keywords,omitempty"`
	OpenGraph   map[string]string `yaml:"og,omitempty"`
}

var (
	_ mdstream.AttributeProcessor = (*Frontmatter)(nil)
	_ mdstream.TextProcessor      = (*Frontmatter)(nil)
	_ mdstream.NodeExitHook       = (*Frontmatter)(nil)
)

// NewFrontmatter returns a frontmatter plugin for a single conversion.
func NewFrontmatter() *Frontmatter { return &Frontmatter{} }

func (f *Frontmatter) Name() string { return "frontmatter" }

func (f *Frontmatter) ProcessAttributes(ctx mdstream.Context, n *mdstream.Node) error {
	if n.Tag == mdstream.TagHead {
		ctx.OpenRegion(n, true)
		return nil
	}
	if !n.Within(mdstream.TagHead) {
		return nil
	}
	switch n.Tag {
	case mdstream.TagMeta:
		content, ok := n.Attr("content")
		if !ok {
			return nil
		}
		content = strings.TrimSpace(content)
		name, _ := n.Attr("name")
		switch strings.ToLower(name) {
		case "description":
			f.meta.Description = content
		case "author":
			f.meta.Author = content
		case "keywords":
			for kw := range strings.SplitSeq(content, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					f.meta.Keywords = append(f.meta.Keywords, kw)
				}
			}
		}
		if prop, ok := n.Attr("property"); ok {
			if key, ok := strings.CutPrefix(strings.ToLower(prop), "og:"); ok && key != "" {
				if f.meta.OpenGraph == nil {
					f.meta.OpenGraph = make(map[string]string)
				}
				f.meta.OpenGraph[key] = content
			}
		}
	case mdstream.TagLink:
		if rel, _ := n.Attr("rel"); strings.EqualFold(rel, "canonical") {
			f.meta.Canonical, _ = n.Attr("href")
		}
	}
	return nil
}

func (f *Frontmatter) ProcessText(ctx mdstream.Context, n *mdstream.Node) (mdstream.TextResult, error) {
	if n.Within(mdstream.TagHead) && n.Within(mdstream.TagTitle) {
		f.title.WriteString(n.Text)
	}
	return mdstream.TextResult{}, nil
}

// OnNodeExit renders the frontmatter block on </head>. Content after the head
// goes to a fresh default region so that the block stays in front of it.
func (f *Frontmatter) OnNodeExit(ctx mdstream.Context, n *mdstream.Node) (string, error) {
	if n.Tag != mdstream.TagHead {
		return "", nil
	}
	ctx.OpenDefaultRegion(ctx.IsIncluded(ctx.Parent(n)))

	f.meta.Title = collapseWhitespace(strings.TrimSpace(f.title.String()))
	if f.meta.Title == "" && f.meta.Description == "" && f.meta.Canonical == "" &&
		f.meta.Author == "" && len(f.meta.Keywords) == 0 && len(f.meta.OpenGraph) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(&f.meta)
	if err != nil {
		return "", err
	}
	return "---\n" + string(out) + "---", nil
}

package html

import (
	"testing"

	"github.com/fwojciec/mdstream"
	"github.com/stretchr/testify/assert"
)

func TestRegions_Assemble(t *testing.T) {
	t.Parallel()

	t.Run("trims only leading whitespace", func(t *testing.T) {
		t.Parallel()

		a := &arena{}
		r := newRegions(a)
		doc := a.alloc()
		doc.Kind = mdstream.DocumentNode

		r.collect(doc, "\n\n  text\n\n")

		assert.Equal(t, "text\n\n", r.assemble())
	})

	t.Run("skips excluded regions and their descendants", func(t *testing.T) {
		t.Parallel()

		a := &arena{}
		r := newRegions(a)
		doc := a.alloc()
		nav := a.alloc()
		nav.Parent = doc.ID
		link := a.alloc()
		link.Parent = nav.ID

		r.collect(doc, "a")
		r.open(nav, false)
		r.collect(link, "hidden")
		r.collect(doc, "b")

		assert.Equal(t, "ab", r.assemble())
	})

	t.Run("clears state after use", func(t *testing.T) {
		t.Parallel()

		a := &arena{}
		r := newRegions(a)
		doc := a.alloc()
		r.openDefault(false)
		r.collect(doc, "x")

		assert.Empty(t, r.assemble())
		r.collect(doc, "y")
		assert.Equal(t, "y", r.assemble())
	})
}

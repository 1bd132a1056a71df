package mdstream

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor isolates the main content of a whole HTML document before
// conversion. It is an optional pre-pass and cannot be used on streams.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

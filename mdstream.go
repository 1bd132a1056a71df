// Package mdstream converts HTML documents into Markdown, either in one shot
// or incrementally as the HTML arrives from a stream.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., html/, sqlite/, goquery/).
package mdstream

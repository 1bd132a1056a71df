package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/mdstream"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ mdstream.DocumentService = (*DocumentService)(nil)

// DocumentService implements mdstream.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "id, source_url, title, content, content_hash, strategy, converted_at"

// CreateDocument stores a new conversion record.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *mdstream.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Strategy == "" {
		doc.Strategy = mdstream.DefaultStrategy
	}
	if doc.ContentHash == "" {
		doc.ContentHash = HashContent(doc.Content)
	}
	if doc.ConvertedAt.IsZero() {
		doc.ConvertedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.SourceURL, doc.Title, doc.Content, doc.ContentHash,
		string(doc.Strategy), doc.ConvertedAt.UTC().Format(timeLayout))

	return err
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*mdstream.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mdstream.Errorf(mdstream.ENOTFOUND, "document not found")
	}
	return doc, err
}

// FindDocuments retrieves documents matching the filter, newest first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter mdstream.DocumentFilter) ([]*mdstream.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY converted_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*mdstream.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteDocument permanently removes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return mdstream.Errorf(mdstream.ENOTFOUND, "document not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*mdstream.Document, error) {
	var doc mdstream.Document
	var strategy, convertedAt string

	if err := row.Scan(&doc.ID, &doc.SourceURL, &doc.Title, &doc.Content,
		&doc.ContentHash, &strategy, &convertedAt); err != nil {
		return nil, err
	}

	doc.Strategy = mdstream.Strategy(strategy)
	var err error
	if doc.ConvertedAt, err = parseTime(convertedAt, "converted_at"); err != nil {
		return nil, err
	}
	return &doc, nil
}

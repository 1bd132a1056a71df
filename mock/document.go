package mock

import (
	"context"

	"github.com/fwojciec/mdstream"
)

var (
	_ mdstream.DocumentService = (*DocumentService)(nil)
	_ mdstream.DocumentStore   = (*DocumentStore)(nil)
)

// DocumentService is a mock implementation of mdstream.DocumentService.
type DocumentService struct {
	CreateDocumentFn   func(ctx context.Context, doc *mdstream.Document) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*mdstream.Document, error)
	FindDocumentsFn    func(ctx context.Context, filter mdstream.DocumentFilter) ([]*mdstream.Document, error)
	DeleteDocumentFn   func(ctx context.Context, id string) error
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *mdstream.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*mdstream.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter mdstream.DocumentFilter) ([]*mdstream.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	return s.DeleteDocumentFn(ctx, id)
}

// DocumentStore is a mock implementation of mdstream.DocumentStore.
type DocumentStore struct {
	SaveFn   func(ctx context.Context, doc *mdstream.Document) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *DocumentStore) Save(ctx context.Context, doc *mdstream.Document) error {
	return s.SaveFn(ctx, doc)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}

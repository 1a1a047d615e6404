package client

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
)

type Client interface {
	// GetIdentity returns (nil, nil) when the server reports no session.
	GetIdentity(ctx context.Context) (*models.Identity, error)
	Login(ctx context.Context, creds models.Credentials) error
	Signup(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error

	ListDocuments(ctx context.Context) ([]models.RemoteDocument, error)
	GetDocument(ctx context.Context, id string) (*models.RemoteDocument, error)
	CreateDocument(ctx context.Context, name string, data []byte) (string, error)
	UpdateDocumentData(ctx context.Context, id string, data []byte) error
	UpdateDocumentMetadata(ctx context.Context, id string, meta models.DocumentMetadata) error
	DeleteDocument(ctx context.Context, id string) error

	GetSnapshot(ctx context.Context, shortKey string) (*models.Snapshot, error)
	CreateSnapshot(ctx context.Context, data []byte) (string, error)

	// BaseURL is the server root, used to build share links.
	BaseURL() *url.URL
}

// Loader is a busy indicator wrapped around every network call.
type Loader interface {
	Loading()
	LoadingFinish()
}

type noopLoader struct{}

func (noopLoader) Loading()       {}
func (noopLoader) LoadingFinish() {}

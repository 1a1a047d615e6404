package services

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/client"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
)

// ShareLinkIssuer turns the current drawing into a public link.
type ShareLinkIssuer interface {
	// IssueShareLink publishes the current drawing as an immutable snapshot
	// and returns its public URL, or "" when that fails.
	IssueShareLink(ctx context.Context) string
}

type shareLinkIssuer struct {
	client  client.Client
	surface Surface
	log     logging.Logger
}

// NewShareLinkIssuer builds links against the client's base URL.
func NewShareLinkIssuer(c client.Client, surface Surface, log logging.Logger) ShareLinkIssuer {
	return &shareLinkIssuer{client: c, surface: surface, log: log}
}

func (s *shareLinkIssuer) IssueShareLink(ctx context.Context) string {
	key, err := s.client.CreateSnapshot(ctx, s.surface.Serialize())
	if err != nil {
		s.log.Warn(ctx, "share link not issued", "error", err)
		return ""
	}

	base := s.client.BaseURL()
	link := url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/" + key}
	return link.String()
}

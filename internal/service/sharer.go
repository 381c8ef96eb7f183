package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go-stock-opname/pkg/apperror"
	"go-stock-opname/pkg/jwt"
)

type ShareStatus string

const (
	ShareCompleted ShareStatus = "completed"
	ShareDismissed ShareStatus = "dismissed"
)

type ShareRequest struct {
	FilePath string
	FileName string
	MimeType string
	Title    string
	Message  string
}

type ShareResult struct {
	Status    ShareStatus `json:"status"`
	URL       string      `json:"url,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

// Sharer offers a file to whatever share target the deployment provides.
type Sharer interface {
	Share(ctx context.Context, req ShareRequest) (ShareResult, error)
}

// LinkSharer shares by issuing a signed, expiring download link and
// announcing it to connected clients.
type LinkSharer struct {
	signer   *jwt.Signer
	baseURL  string
	ttl      time.Duration
	notifier Notifier
}

const DownloadPath = "/api/v1/exports/download"

func NewLinkSharer(signer *jwt.Signer, baseURL string, ttl time.Duration, notifier Notifier) *LinkSharer {
	return &LinkSharer{
		signer:   signer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		ttl:      ttl,
		notifier: notifier,
	}
}

func (s *LinkSharer) Share(_ context.Context, req ShareRequest) (ShareResult, error) {
	token, expiresAt, err := s.signer.GenerateShareToken(req.FileName, s.ttl)
	if err != nil {
		return ShareResult{}, apperror.Wrap(apperror.KindInternal, err, "sign share link")
	}

	link := s.baseURL + DownloadPath + "?token=" + url.QueryEscape(token)
	if s.notifier != nil {
		s.notifier.Publish("export", "export_shared", map[string]interface{}{
			"file_name":  req.FileName,
			"mime_type":  req.MimeType,
			"title":      req.Title,
			"url":        link,
			"expires_at": expiresAt,
		}, req.Message)
	}

	return ShareResult{Status: ShareCompleted, URL: link, ExpiresAt: &expiresAt}, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"monotributo/internal/cache"
	"monotributo/internal/ledger"
	"monotributo/internal/storage"
)

// ReportService resolves public report links. Reports are cached per
// client id; unknown ids are not cached.
type ReportService struct {
	repo  *storage.Repository
	cache *cache.LRUCache[ledger.PublicReport]
}

// NewReportService takes the cache to use; pass nil to disable caching.
func NewReportService(repo *storage.Repository, c *cache.LRUCache[ledger.PublicReport]) *ReportService {
	return &ReportService{repo: repo, cache: c}
}

// PublicReport returns ledger.ErrReportNotAvailable for an unknown id.
func (s *ReportService) PublicReport(ctx context.Context, clientID string) (ledger.PublicReport, error) {
	if s.cache != nil {
		if r, ok := s.cache.Get(clientID); ok {
			return r, nil
		}
	}

	c, scope, found, err := s.repo.FindClient(ctx, clientID)
	if err != nil {
		return ledger.PublicReport{}, fmt.Errorf("find client: %w", err)
	}
	if !found {
		return ledger.BuildReport(nil, nil)
	}
	invoices, err := s.repo.Invoices(ctx, scope)
	if err != nil {
		return ledger.PublicReport{}, fmt.Errorf("load invoices: %w", err)
	}
	report, err := ledger.BuildReport(&c, invoices)
	if err != nil {
		return ledger.PublicReport{}, err
	}
	if s.cache != nil {
		s.cache.Set(clientID, report)
	}
	return report, nil
}

// Invalidate drops the cached report of clientID.
func (s *ReportService) Invalidate(ctx context.Context, clientID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(clientID)
	slog.DebugContext(ctx, "Public report invalidated", "client_id", clientID)
}

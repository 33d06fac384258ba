package jobs

import (
	"context"
	"log"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// StaleDocumentRepository is the registry surface the reaper needs.
type StaleDocumentRepository interface {
	ListStaleProcessing(ctx context.Context, cutoff time.Time) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errorNote string) error
}

// StaleDocumentReaper marks documents stuck in processing as errored.
// Ingestion normally records a terminal status itself; a crashed process
// leaves documents behind in processing, and the reaper is what makes
// that state recoverable.
type StaleDocumentReaper struct {
	docRepo StaleDocumentRepository
	maxAge  time.Duration
}

func NewStaleDocumentReaper(docRepo StaleDocumentRepository, maxAge time.Duration) *StaleDocumentReaper {
	if maxAge <= 0 {
		maxAge = 15 * time.Minute
	}
	return &StaleDocumentReaper{docRepo: docRepo, maxAge: maxAge}
}

// ProcessJobs implements JobProcessor.
func (r *StaleDocumentReaper) ProcessJobs(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-r.maxAge)

	ids, err := r.docRepo.ListStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := r.docRepo.UpdateStatus(ctx, id, domain.DocumentStatusError, "processing timed out"); err != nil {
			log.Printf("Failed to mark stale document %s as errored: %v", id, err)
			continue
		}
		log.Printf("Marked stale document %s as errored after %v in processing", id, r.maxAge)
	}

	return nil
}

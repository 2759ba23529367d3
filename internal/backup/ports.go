// Package backup defines the outbound port for mirroring committed meal
// logs to an external store.
package backup

import (
	"context"

	"github.com/SDhanushDev/fet/internal/core"
)

// RowAppender mirrors one committed log to the backup destination.
// Re-commits for the same date append a fresh row; the backup is an
// append-only journal, not a replica of the upserted collection.
type RowAppender interface {
	AppendLogRow(ctx context.Context, log core.MealLog) error
}

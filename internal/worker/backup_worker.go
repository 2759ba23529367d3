// Package worker consumes ledger events and mirrors committed meal logs
// to the backup destination.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SDhanushDev/fet/internal/amqp"
	"github.com/SDhanushDev/fet/internal/backup"
	"github.com/SDhanushDev/fet/internal/core"
)

type BackupWorker struct {
	appender backup.RowAppender
}

func NewBackupWorker(appender backup.RowAppender) *BackupWorker {
	return &BackupWorker{appender: appender}
}

// HandleLedgerEvent processes one event from the queue. Only committed
// logs are mirrored; top-up events are acknowledged and skipped.
func (w *BackupWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Kind != amqp.KindLogCommitted {
		slog.DebugContext(ctx, "Skipping non-log event", "kind", msg.Kind)
		return nil
	}
	if w.appender == nil {
		slog.WarnContext(ctx, "No backup appender configured, skipping event", "date", msg.Date)
		return nil
	}

	log := core.MealLog{
		Date:               msg.Date,
		HadTiffin:          msg.HadTiffin,
		HadLunch:           msg.HadLunch,
		HadDinner:          msg.HadDinner,
		AmountSpent:        msg.AmountSpent,
		WalletBalanceAfter: msg.BalanceAfter,
	}

	if err := w.appender.AppendLogRow(ctx, log); err != nil {
		return fmt.Errorf("append log row: %w", err)
	}

	slog.InfoContext(ctx, "Ledger event mirrored", "date", msg.Date, "amount_spent", msg.AmountSpent)
	return nil
}

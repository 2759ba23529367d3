package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SDhanushDev/fet/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable backend: one row per record key in a single
// records table, value stored as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) getRaw(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read record %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) setRaw(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Record saved", "key", key, "bytes", len(data))
	return nil
}

func (s *SQLiteStore) GetWallet(ctx context.Context) (*core.Wallet, error) {
	data, ok, err := s.getRaw(ctx, KeyWallet)
	if err != nil || !ok {
		return nil, err
	}
	var w core.Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", KeyWallet, err)
	}
	return &w, nil
}

func (s *SQLiteStore) SaveWallet(ctx context.Context, w core.Wallet) error {
	return s.setRaw(ctx, KeyWallet, w)
}

func (s *SQLiteStore) GetMealLogs(ctx context.Context) ([]core.MealLog, error) {
	data, ok, err := s.getRaw(ctx, KeyMealLogs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []core.MealLog{}, nil
	}
	var logs []core.MealLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", KeyMealLogs, err)
	}
	return logs, nil
}

func (s *SQLiteStore) SaveMealLogs(ctx context.Context, logs []core.MealLog) error {
	if logs == nil {
		logs = []core.MealLog{}
	}
	return s.setRaw(ctx, KeyMealLogs, logs)
}

func (s *SQLiteStore) GetMealPrices(ctx context.Context) (core.MealPrices, error) {
	data, ok, err := s.getRaw(ctx, KeyMealPrices)
	if err != nil {
		return core.MealPrices{}, err
	}
	if !ok {
		return core.DefaultMealPrices(), nil
	}
	var p core.MealPrices
	if err := json.Unmarshal(data, &p); err != nil {
		return core.MealPrices{}, fmt.Errorf("unmarshal %s: %w", KeyMealPrices, err)
	}
	return p, nil
}

func (s *SQLiteStore) SaveMealPrices(ctx context.Context, p core.MealPrices) error {
	return s.setRaw(ctx, KeyMealPrices, p)
}

func (s *SQLiteStore) GetRegularMealPlan(ctx context.Context) (core.RegularMealPlan, error) {
	data, ok, err := s.getRaw(ctx, KeyRegularMealPlan)
	if err != nil {
		return core.RegularMealPlan{}, err
	}
	if !ok {
		return core.DefaultRegularMealPlan(), nil
	}
	var plan core.RegularMealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return core.RegularMealPlan{}, fmt.Errorf("unmarshal %s: %w", KeyRegularMealPlan, err)
	}
	return plan, nil
}

func (s *SQLiteStore) SaveRegularMealPlan(ctx context.Context, plan core.RegularMealPlan) error {
	return s.setRaw(ctx, KeyRegularMealPlan, plan)
}

func (s *SQLiteStore) GetNotificationSettings(ctx context.Context) (core.NotificationSettings, error) {
	data, ok, err := s.getRaw(ctx, KeyNotificationSettings)
	if err != nil {
		return core.NotificationSettings{}, err
	}
	if !ok {
		return core.DefaultNotificationSettings(), nil
	}
	var n core.NotificationSettings
	if err := json.Unmarshal(data, &n); err != nil {
		return core.NotificationSettings{}, fmt.Errorf("unmarshal %s: %w", KeyNotificationSettings, err)
	}
	return n, nil
}

func (s *SQLiteStore) SaveNotificationSettings(ctx context.Context, n core.NotificationSettings) error {
	return s.setRaw(ctx, KeyNotificationSettings, n)
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(RecordKeys)), ",")
	args := make([]any, len(RecordKeys))
	for i, key := range RecordKeys {
		args[i] = key
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}

	slog.InfoContext(ctx, "All records cleared")
	return nil
}

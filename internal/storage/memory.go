package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/SDhanushDev/fet/internal/core"
)

// MemoryStore keeps the records in a mutex-guarded map of JSON values,
// mirroring the durable backends' layout exactly. It is the default
// backend and the test double.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[key]
	return v, ok
}

func (s *MemoryStore) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = data
	return nil
}

func (s *MemoryStore) GetWallet(_ context.Context) (*core.Wallet, error) {
	data, ok := s.get(KeyWallet)
	if !ok {
		return nil, nil
	}
	var w core.Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", KeyWallet, err)
	}
	return &w, nil
}

func (s *MemoryStore) SaveWallet(_ context.Context, w core.Wallet) error {
	return s.set(KeyWallet, w)
}

func (s *MemoryStore) GetMealLogs(_ context.Context) ([]core.MealLog, error) {
	data, ok := s.get(KeyMealLogs)
	if !ok {
		return []core.MealLog{}, nil
	}
	var logs []core.MealLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", KeyMealLogs, err)
	}
	return logs, nil
}

func (s *MemoryStore) SaveMealLogs(_ context.Context, logs []core.MealLog) error {
	if logs == nil {
		logs = []core.MealLog{}
	}
	return s.set(KeyMealLogs, logs)
}

func (s *MemoryStore) GetMealPrices(_ context.Context) (core.MealPrices, error) {
	data, ok := s.get(KeyMealPrices)
	if !ok {
		return core.DefaultMealPrices(), nil
	}
	var p core.MealPrices
	if err := json.Unmarshal(data, &p); err != nil {
		return core.MealPrices{}, fmt.Errorf("unmarshal %s: %w", KeyMealPrices, err)
	}
	return p, nil
}

func (s *MemoryStore) SaveMealPrices(_ context.Context, p core.MealPrices) error {
	return s.set(KeyMealPrices, p)
}

func (s *MemoryStore) GetRegularMealPlan(_ context.Context) (core.RegularMealPlan, error) {
	data, ok := s.get(KeyRegularMealPlan)
	if !ok {
		return core.DefaultRegularMealPlan(), nil
	}
	var plan core.RegularMealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return core.RegularMealPlan{}, fmt.Errorf("unmarshal %s: %w", KeyRegularMealPlan, err)
	}
	return plan, nil
}

func (s *MemoryStore) SaveRegularMealPlan(_ context.Context, plan core.RegularMealPlan) error {
	return s.set(KeyRegularMealPlan, plan)
}

func (s *MemoryStore) GetNotificationSettings(_ context.Context) (core.NotificationSettings, error) {
	data, ok := s.get(KeyNotificationSettings)
	if !ok {
		return core.DefaultNotificationSettings(), nil
	}
	var n core.NotificationSettings
	if err := json.Unmarshal(data, &n); err != nil {
		return core.NotificationSettings{}, fmt.Errorf("unmarshal %s: %w", KeyNotificationSettings, err)
	}
	return n, nil
}

func (s *MemoryStore) SaveNotificationSettings(_ context.Context, n core.NotificationSettings) error {
	return s.set(KeyNotificationSettings, n)
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range RecordKeys {
		delete(s.records, key)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

package amqp

import (
	"encoding/json"
	"time"

	"github.com/SDhanushDev/fet/internal/core"
)

// Event kinds carried on the ledger exchange.
const (
	KindLogCommitted = "log_committed"
	KindWalletTopUp  = "wallet_topup"
)

// LedgerEventMessage announces a committed ledger mutation. It carries the
// full row so consumers (the backup worker) never need storage access.
type LedgerEventMessage struct {
	Kind         string    `json:"kind"`
	Date         string    `json:"date,omitempty"`
	HadTiffin    bool      `json:"hadTiffin,omitempty"`
	HadLunch     bool      `json:"hadLunch,omitempty"`
	HadDinner    bool      `json:"hadDinner,omitempty"`
	AmountSpent  float64   `json:"amountSpent"`
	BalanceAfter float64   `json:"balanceAfter"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewLogCommittedMessage builds the event for an upserted daily log.
func NewLogCommittedMessage(log core.MealLog) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:         KindLogCommitted,
		Date:         log.Date,
		HadTiffin:    log.HadTiffin,
		HadLunch:     log.HadLunch,
		HadDinner:    log.HadDinner,
		AmountSpent:  log.AmountSpent,
		BalanceAfter: log.WalletBalanceAfter,
		Timestamp:    time.Now(),
	}
}

// NewTopUpMessage builds the event for a wallet top-up.
func NewTopUpMessage(w core.Wallet) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:         KindWalletTopUp,
		AmountSpent:  w.TopupAmount,
		BalanceAfter: w.CurrentBalance,
		Timestamp:    w.TopupDate,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

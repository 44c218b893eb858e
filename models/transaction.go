package models

import "time"

type TransactionType string

const (
	DepositTransaction  TransactionType = "deposit"
	WithdrawTransaction TransactionType = "withdraw"
	WinTransaction      TransactionType = "win"
	EntryTransaction    TransactionType = "entry"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is one row of the append-only ledger. Amount is signed:
// positive for credits (deposit, win), negative for debits (withdraw,
// entry). TxRef holds the provider's external transaction id for deposits
// and is the idempotency key; the unique index on it is what makes
// double-crediting impossible.
type Transaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"index" json:"user_id"`
	Type        TransactionType   `gorm:"index" json:"type"`
	Amount      float64           `json:"amount"`
	Status      TransactionStatus `gorm:"index" json:"status"`
	TxRef       *string           `gorm:"uniqueIndex" json:"tx_ref,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	Payer       string            `json:"payer,omitempty"`
	Reference   string            `json:"reference,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	SMSText     string            `json:"-"`
	AdminNote   string            `json:"admin_note,omitempty"`
	SessionID   *uint             `json:"session_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

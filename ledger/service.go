package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/addisbingo/bingo-backend/models"
	"github.com/addisbingo/bingo-backend/payments"
)

// Limits bound deposit requests and withdrawals, in birr.
type Limits struct {
	MinDeposit    float64
	MaxDeposit    float64
	MinWithdrawal float64
}

// Service owns every balance mutation in the system. The session engine
// never touches balances directly; it asks the ledger to debit stakes and
// credit wins so the money invariants live in one place.
type Service struct {
	store  Store
	log    *zap.SugaredLogger
	limits Limits
}

func NewService(store Store, log *zap.SugaredLogger, limits Limits) *Service {
	return &Service{store: store, log: log, limits: limits}
}

// Reconcile applies a parsed payment notification to the ledger: reject if
// the idempotency key is missing or already used, reject incomplete data,
// otherwise resolve the paying user, credit the balance and write a
// completed ledger row. Exactly one credit happens per external transaction
// id no matter how many times the notification is delivered.
func (s *Service) Reconcile(ctx context.Context, n payments.Notification) (*models.Transaction, error) {
	if n.TxID == "" {
		return nil, ErrMissingTxID
	}

	// Fast-path duplicate check. The unique index inside ApplyDeposit is
	// the authoritative guard; this read only produces a cleaner rejection
	// for the common redelivery case.
	if _, err := s.store.TransactionByTxRef(ctx, n.TxID); err == nil {
		s.log.Warnw("duplicate payment notification",
			"tx_ref", n.TxID, "provider", n.Provider, "amount", n.Amount)
		return nil, ErrDuplicateTransaction
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if n.Amount <= 0 {
		return nil, ErrIncompleteData
	}

	userID, pendingID, err := s.resolvePayer(ctx, n)
	if err != nil {
		s.log.Warnw("payment notification with no matching user",
			"tx_ref", n.TxID, "payer", n.Payer, "amount", n.Amount)
		return nil, err
	}

	now := time.Now()
	txRef := n.TxID
	tx := &models.Transaction{
		UserID:      userID,
		Type:        models.DepositTransaction,
		Amount:      n.Amount,
		Status:      models.TransactionCompleted,
		TxRef:       &txRef,
		Provider:    string(n.Provider),
		Payer:       n.Payer,
		SMSText:     n.Raw,
		CompletedAt: &now,
	}
	if err := s.store.ApplyDeposit(ctx, pendingID, tx); err != nil {
		if errors.Is(err, ErrDuplicateTransaction) {
			s.log.Warnw("duplicate payment notification lost the race",
				"tx_ref", n.TxID, "user_id", userID, "amount", n.Amount)
		}
		return nil, err
	}

	s.log.Infow("deposit credited",
		"tx_ref", n.TxID, "user_id", userID, "amount", n.Amount, "provider", n.Provider)
	return tx, nil
}

// resolvePayer finds the user a notification belongs to: by payer phone when
// the provider gives one, otherwise by the newest pending deposit request
// announcing the same amount.
func (s *Service) resolvePayer(ctx context.Context, n payments.Notification) (userID uint, pendingID uint, err error) {
	if payments.LooksLikePhone(n.Payer) {
		user, err := s.store.UserByPhone(ctx, n.Payer)
		if err == nil {
			return user.ID, 0, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return 0, 0, err
		}
	}

	pending, err := s.store.LatestPendingDeposit(ctx, n.Amount)
	if err != nil {
		if errors.Is(err, ErrUnknownPayer) {
			return 0, 0, ErrUnknownPayer
		}
		return 0, 0, err
	}
	return pending.UserID, pending.ID, nil
}

// RequestDeposit records that a user intends to send money, so an incoming
// notification without a recognizable phone can still be matched by amount.
func (s *Service) RequestDeposit(ctx context.Context, telegramID int64, amount float64) (*models.Transaction, error) {
	if amount < s.limits.MinDeposit {
		return nil, ErrBelowMinimum
	}
	if amount > s.limits.MaxDeposit {
		return nil, ErrAboveMaximum
	}

	user, err := s.store.UserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:    user.ID,
		Type:      models.DepositTransaction,
		Amount:    amount,
		Status:    models.TransactionPending,
		Reference: uuid.NewString(),
		Phone:     user.Phone,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RequestWithdrawal creates a pending withdrawal for admin review. The
// balance is untouched until approval; the sufficiency check here only
// rejects requests that cannot possibly be approved.
func (s *Service) RequestWithdrawal(ctx context.Context, telegramID int64, amount float64) (*models.Transaction, error) {
	if amount < s.limits.MinWithdrawal {
		return nil, ErrBelowMinimum
	}

	user, err := s.store.UserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user.Balance < amount {
		s.log.Warnw("withdrawal request over balance",
			"user_id", user.ID, "amount", amount, "balance", user.Balance)
		return nil, ErrInsufficientBalance
	}

	tx := &models.Transaction{
		UserID:    user.ID,
		Type:      models.WithdrawTransaction,
		Amount:    -amount,
		Status:    models.TransactionPending,
		Reference: uuid.NewString(),
		Phone:     user.Phone,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ApproveWithdrawal finalizes a pending withdrawal: debits the balance
// under a sufficiency guard and marks the row completed.
func (s *Service) ApproveWithdrawal(ctx context.Context, transactionID uint) error {
	tx, err := s.store.TransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx.Type != models.WithdrawTransaction || tx.Status != models.TransactionPending {
		return ErrInvalidTransaction
	}

	if err := s.store.ApplyWithdrawal(ctx, tx, "approved"); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			s.log.Warnw("withdrawal approval without sufficient balance",
				"transaction_id", tx.ID, "user_id", tx.UserID, "amount", -tx.Amount)
		}
		return err
	}

	s.log.Infow("withdrawal approved",
		"transaction_id", tx.ID, "user_id", tx.UserID, "amount", -tx.Amount)
	return nil
}

// RejectWithdrawal marks a pending withdrawal failed with the reviewer's
// reason. No balance effect.
func (s *Service) RejectWithdrawal(ctx context.Context, transactionID uint, reason string) error {
	tx, err := s.store.TransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx.Type != models.WithdrawTransaction || tx.Status != models.TransactionPending {
		return ErrInvalidTransaction
	}
	if reason == "" {
		reason = "rejected by admin"
	}
	return s.store.FailTransaction(ctx, tx, reason)
}

// DebitStake takes a session entry fee from the user's balance.
func (s *Service) DebitStake(ctx context.Context, userID uint, amount float64, sessionID uint) error {
	err := s.store.DebitStake(ctx, userID, amount, sessionID)
	if errors.Is(err, ErrInsufficientBalance) {
		s.log.Warnw("stake debit over balance",
			"user_id", userID, "amount", amount, "session_id", sessionID)
	}
	return err
}

// RefundStake reverses an entry fee when admission fails after the debit.
func (s *Service) RefundStake(ctx context.Context, userID uint, amount float64, sessionID uint) error {
	return s.store.RefundStake(ctx, userID, amount, sessionID)
}

// CreditWin pays the pool to the winner.
func (s *Service) CreditWin(ctx context.Context, userID uint, amount float64, sessionID uint) error {
	return s.store.CreditWin(ctx, userID, amount, sessionID)
}

// BumpGamesPlayed increments the played counter for a finished session's
// participants.
func (s *Service) BumpGamesPlayed(ctx context.Context, userIDs []uint) error {
	return s.store.BumpGamesPlayed(ctx, userIDs)
}

// ExpireStaleDeposits fails pending deposit requests older than ttl. The
// janitor calls this on a schedule.
func (s *Service) ExpireStaleDeposits(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.store.ExpirePendingDeposits(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Infow("expired stale pending deposits", "count", n)
	}
	return n, nil
}

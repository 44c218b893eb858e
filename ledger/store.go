package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/addisbingo/bingo-backend/models"
)

// Store is the durable side of the ledger. Implementations must make the
// Apply* methods atomic: the ledger row and the balance mutation either both
// land or neither does, and ApplyDeposit must reject a duplicate external
// transaction id with ErrDuplicateTransaction even under concurrent calls.
type Store interface {
	UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UserByPhone(ctx context.Context, phone string) (*models.User, error)
	TransactionByID(ctx context.Context, id uint) (*models.Transaction, error)
	TransactionByTxRef(ctx context.Context, txRef string) (*models.Transaction, error)
	LatestPendingDeposit(ctx context.Context, amount float64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// ApplyDeposit writes a completed deposit row keyed by tx.TxRef and
	// credits the user's balance in one unit. If pendingID is non-zero the
	// existing pending request row is completed in place instead of a new
	// row being inserted.
	ApplyDeposit(ctx context.Context, pendingID uint, tx *models.Transaction) error

	// ApplyWithdrawal debits the balance by the transaction's magnitude,
	// guarded by a sufficiency check, and marks the row completed.
	ApplyWithdrawal(ctx context.Context, tx *models.Transaction, note string) error

	// FailTransaction marks a pending row failed with an annotation. No
	// balance effect.
	FailTransaction(ctx context.Context, tx *models.Transaction, note string) error

	// DebitStake atomically checks sufficiency, debits the balance and
	// records a completed entry transaction.
	DebitStake(ctx context.Context, userID uint, amount float64, sessionID uint) error

	// CreditWin credits the pool to the winner with a completed win row and
	// bumps the win counter.
	CreditWin(ctx context.Context, userID uint, amount float64, sessionID uint) error

	// RefundStake reverses an entry debit when admission fails after the
	// stake was taken.
	RefundStake(ctx context.Context, userID uint, amount float64, sessionID uint) error

	BumpGamesPlayed(ctx context.Context, userIDs []uint) error
	ExpirePendingDeposits(ctx context.Context, olderThan time.Time) (int64, error)
}

// GormStore implements Store on the shared gorm connection. It relies on
// gorm's error translation (gorm.ErrDuplicatedKey) for the unique index on
// transactions.tx_ref.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by telegram id: %w", err)
	}
	return &user, nil
}

func (s *GormStore) UserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by phone: %w", err)
	}
	return &user, nil
}

func (s *GormStore) TransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).First(&tx, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidTransaction
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	return &tx, nil
}

func (s *GormStore) TransactionByTxRef(ctx context.Context, txRef string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transaction by tx_ref: %w", err)
	}
	return &tx, nil
}

func (s *GormStore) LatestPendingDeposit(ctx context.Context, amount float64) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ? AND amount = ?",
			models.DepositTransaction, models.TransactionPending, amount).
		Order("created_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownPayer
	}
	if err != nil {
		return nil, fmt.Errorf("fetch pending deposit: %w", err)
	}
	return &tx, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *GormStore) ApplyDeposit(ctx context.Context, pendingID uint, tx *models.Transaction) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if pendingID != 0 {
			res := db.Model(&models.Transaction{}).
				Where("id = ? AND status = ?", pendingID, models.TransactionPending).
				Updates(map[string]any{
					"status":       models.TransactionCompleted,
					"tx_ref":       tx.TxRef,
					"provider":     tx.Provider,
					"payer":        tx.Payer,
					"sms_text":     tx.SMSText,
					"completed_at": tx.CompletedAt,
				})
			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
					return ErrDuplicateTransaction
				}
				return fmt.Errorf("complete pending deposit: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Raced with another notification completing the same request.
				return ErrDuplicateTransaction
			}
		} else {
			if err := db.Create(tx).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateTransaction
				}
				return fmt.Errorf("insert deposit: %w", err)
			}
		}

		res := db.Model(&models.User{}).
			Where("id = ?", tx.UserID).
			Update("balance", gorm.Expr("balance + ?", tx.Amount))
		if res.Error != nil {
			return fmt.Errorf("credit balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *GormStore) ApplyWithdrawal(ctx context.Context, tx *models.Transaction, note string) error {
	amount := -tx.Amount // withdrawals are stored as negative amounts
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&models.User{}).
			Where("id = ? AND balance >= ?", tx.UserID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("debit balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		now := time.Now()
		res = db.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", tx.ID, models.TransactionPending).
			Updates(map[string]any{
				"status":       models.TransactionCompleted,
				"admin_note":   note,
				"completed_at": &now,
			})
		if res.Error != nil {
			return fmt.Errorf("complete withdrawal: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransaction
		}
		return nil
	})
}

func (s *GormStore) FailTransaction(ctx context.Context, tx *models.Transaction, note string) error {
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", tx.ID, models.TransactionPending).
		Updates(map[string]any{
			"status":     models.TransactionFailed,
			"admin_note": note,
		})
	if res.Error != nil {
		return fmt.Errorf("fail transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransaction
	}
	return nil
}

func (s *GormStore) DebitStake(ctx context.Context, userID uint, amount float64, sessionID uint) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("debit stake: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		now := time.Now()
		entry := models.Transaction{
			UserID:      userID,
			Type:        models.EntryTransaction,
			Amount:      -amount,
			Status:      models.TransactionCompleted,
			SessionID:   &sessionID,
			CompletedAt: &now,
		}
		if err := db.Create(&entry).Error; err != nil {
			return fmt.Errorf("record entry: %w", err)
		}
		return nil
	})
}

func (s *GormStore) CreditWin(ctx context.Context, userID uint, amount float64, sessionID uint) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"balance":   gorm.Expr("balance + ?", amount),
				"games_won": gorm.Expr("games_won + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("credit win: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		now := time.Now()
		win := models.Transaction{
			UserID:      userID,
			Type:        models.WinTransaction,
			Amount:      amount,
			Status:      models.TransactionCompleted,
			SessionID:   &sessionID,
			CompletedAt: &now,
		}
		if err := db.Create(&win).Error; err != nil {
			return fmt.Errorf("record win: %w", err)
		}
		return nil
	})
}

func (s *GormStore) RefundStake(ctx context.Context, userID uint, amount float64, sessionID uint) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&models.User{}).
			Where("id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("refund stake: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		now := time.Now()
		refund := models.Transaction{
			UserID:      userID,
			Type:        models.EntryTransaction,
			Amount:      amount,
			Status:      models.TransactionCompleted,
			AdminNote:   "entry refund",
			SessionID:   &sessionID,
			CompletedAt: &now,
		}
		if err := db.Create(&refund).Error; err != nil {
			return fmt.Errorf("record refund: %w", err)
		}
		return nil
	})
}

func (s *GormStore) BumpGamesPlayed(ctx context.Context, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ?", userIDs).
		Update("games_played", gorm.Expr("games_played + 1")).Error
	if err != nil {
		return fmt.Errorf("bump games played: %w", err)
	}
	return nil
}

func (s *GormStore) ExpirePendingDeposits(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND status = ? AND created_at < ?",
			models.DepositTransaction, models.TransactionPending, olderThan).
		Updates(map[string]any{
			"status":     models.TransactionFailed,
			"admin_note": "expired without matching payment",
		})
	if res.Error != nil {
		return 0, fmt.Errorf("expire pending deposits: %w", res.Error)
	}
	return res.RowsAffected, nil
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addisbingo/bingo-backend/ledger"
	"github.com/addisbingo/bingo-backend/payments"
)

// DepositWebhook ingests a provider SMS forwarded by the notification
// channel, parses it and hands the result to the reconciler. Redelivery of
// the same notification is safe: the external transaction id is the
// idempotency key.
func DepositWebhook(c *gin.Context) {
	var req struct {
		RawSMS string `json:"raw_sms" binding:"required"`
		Sender string `json:"sender" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := payments.Parse(req.RawSMS, req.Sender)
	tx, err := Ledger.Reconcile(c.Request.Context(), n)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrMissingTxID):
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Transaction ID missing"})
		case errors.Is(err, ledger.ErrDuplicateTransaction):
			c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "Transaction already processed"})
		case errors.Is(err, ledger.ErrIncompleteData):
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Incomplete transaction data"})
		case errors.Is(err, ledger.ErrUnknownPayer):
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "No matching user for payment"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to process deposit"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"tx_id":    *tx.TxRef,
			"amount":   tx.Amount,
			"provider": tx.Provider,
			"user_id":  tx.UserID,
		},
	})
}

// RequestDeposit records an announced deposit so the reconciler can match
// an incoming payment by amount when the payer field is not a phone.
func RequestDeposit(c *gin.Context) {
	var req struct {
		TelegramID int64   `json:"telegram_id" binding:"required"`
		Amount     float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := Ledger.RequestDeposit(c.Request.Context(), req.TelegramID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount below minimum deposit"})
		case errors.Is(err, ledger.ErrAboveMaximum):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount above maximum deposit"})
		case errors.Is(err, ledger.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deposit request"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction_id": tx.ID,
		"reference":      tx.Reference,
		"amount":         tx.Amount,
		"status":         tx.Status,
	})
}

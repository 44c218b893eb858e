package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/addisbingo/bingo-backend/ledger"
)

// RequestWithdrawal creates a pending withdrawal for admin review. The
// balance is only debited on approval.
func RequestWithdrawal(c *gin.Context) {
	var req struct {
		TelegramID int64   `json:"telegram_id" binding:"required"`
		Amount     float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := Ledger.RequestWithdrawal(c.Request.Context(), req.TelegramID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount below minimum withdrawal"})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, ledger.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
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

// ApproveWithdrawal finalizes a pending withdrawal (admin).
func ApproveWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	if err := Ledger.ApproveWithdrawal(c.Request.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidTransaction):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is not a pending withdrawal"})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// RejectWithdrawal marks a pending withdrawal failed with a reason (admin).
func RejectWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := Ledger.RejectWithdrawal(c.Request.Context(), uint(id), req.Reason); err != nil {
		if errors.Is(err, ledger.ErrInvalidTransaction) {
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is not a pending withdrawal"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

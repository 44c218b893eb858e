package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/addisbingo/bingo-backend/config"
	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/ledger"
	"github.com/addisbingo/bingo-backend/models"
	"github.com/addisbingo/bingo-backend/services"
	"github.com/addisbingo/bingo-backend/utils/logger"
)

// CreateSession opens a new waiting session for one of the configured stake
// tiers. The archive row is written first so its primary key becomes the
// session id and ids stay unique across restarts.
func CreateSession(c *gin.Context) {
	var req struct {
		Stake int `json:"stake" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !Sessions.ValidStake(req.Stake) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stake is not a configured tier"})
		return
	}

	record := models.Session{
		Stake:        req.Stake,
		Status:       string(game.StatusWaiting),
		DrawnNumbers: datatypes.JSON([]byte("[]")),
	}
	if err := config.DB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	sess, err := Sessions.CreateWithID(record.ID, req.Stake)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	logger.Infof("session %d created with stake %d", sess.ID, sess.Stake)
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID, "stake": sess.Stake})
}

// JoinSession admits a user: the stake is debited first, then the engine
// assigns a card. If admission fails after the debit, the stake is
// refunded.
func JoinSession(c *gin.Context) {
	sess, ok := sessionFromPath(c)
	if !ok {
		return
	}

	var req struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	ctx := c.Request.Context()
	if err := Ledger.DebitStake(ctx, user.ID, float64(sess.Stake), sess.ID); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient balance"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit stake"})
		return
	}

	card, err := sess.Join(user.TelegramID)
	if err != nil {
		if rerr := Ledger.RefundStake(ctx, user.ID, float64(sess.Stake), sess.ID); rerr != nil {
			logger.Errorf("refunding stake for user %d in session %d: %v", user.ID, sess.ID, rerr)
		}
		switch {
		case errors.Is(err, game.ErrAlreadyJoined):
			c.JSON(http.StatusConflict, gin.H{"error": "Already joined"})
		case errors.Is(err, game.ErrNotAccepting):
			c.JSON(http.StatusConflict, gin.H{"error": "Session is not accepting players"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join"})
		}
		return
	}

	started := sess.TryStart()
	snap := sess.Snapshot()
	updateSessionRecord(snap)

	Stream.Broadcast(sess.ID, services.Event{Type: "joined", UserID: user.TelegramID, State: &snap})
	if started {
		Stream.Broadcast(sess.ID, services.Event{Type: "started", State: &snap})
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"card":       card,
		"players":    snap.Players,
		"status":     snap.Status,
	})
}

// DrawNumber reveals the next number of an active session.
func DrawNumber(c *gin.Context) {
	sess, ok := sessionFromPath(c)
	if !ok {
		return
	}

	n, err := sess.Draw()
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Session is not active"})
		case errors.Is(err, game.ErrExhausted):
			c.JSON(http.StatusConflict, gin.H{"error": "No more numbers to draw"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to draw"})
		}
		return
	}

	snap := sess.Snapshot()
	updateSessionRecord(snap)
	Stream.Broadcast(sess.ID, services.Event{Type: "number", Number: n, Label: game.Label(n)})

	c.JSON(http.StatusOK, gin.H{
		"number":    n,
		"label":     game.Label(n),
		"drawn":     snap.Drawn,
		"remaining": snap.Remaining,
	})
}

// MarkNumber marks a drawn number on the caller's card and settles the
// session if the mark completes a line.
func MarkNumber(c *gin.Context) {
	sess, ok := sessionFromPath(c)
	if !ok {
		return
	}

	var req struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
		Number     int   `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sess.Mark(req.TelegramID, req.Number); err != nil {
		switch {
		case errors.Is(err, game.ErrNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Session is not active"})
		case errors.Is(err, game.ErrUnknownParticipant):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not a participant"})
		case errors.Is(err, game.ErrNumberNotOnCard):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Number is not on your card"})
		case errors.Is(err, game.ErrNumberNotDrawn):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Number has not been drawn"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark"})
		}
		return
	}

	won, line, err := sess.CheckWin(req.TelegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check win"})
		return
	}

	resp := gin.H{"marked": true, "winner": false}
	if won {
		if settleWin(c, sess, req.TelegramID, line) {
			resp["winner"] = true
			resp["line"] = line
		}
	}
	c.JSON(http.StatusOK, resp)
}

// settleWin finishes the session and pays the pool. Finish is idempotent,
// so only the first confirmed win triggers the payout. Reports whether this
// caller is the recorded winner.
func settleWin(c *gin.Context, sess *game.Session, telegramID int64, line string) bool {
	pool := sess.Pool()
	already, err := sess.Finish(telegramID, line)
	if err != nil || already {
		return false
	}

	ctx := c.Request.Context()
	var winner models.User
	if err := config.DB.Where("telegram_id = ?", telegramID).First(&winner).Error; err != nil {
		logger.Errorf("session %d winner %d has no user record: %v", sess.ID, telegramID, err)
	} else if err := Ledger.CreditWin(ctx, winner.ID, pool, sess.ID); err != nil {
		logger.Errorf("crediting win for user %d in session %d: %v", winner.ID, sess.ID, err)
	}

	var userIDs []uint
	if err := config.DB.Model(&models.User{}).
		Where("telegram_id IN ?", sess.ParticipantIDs()).
		Pluck("id", &userIDs).Error; err == nil {
		if err := Ledger.BumpGamesPlayed(ctx, userIDs); err != nil {
			logger.Errorf("bumping games played for session %d: %v", sess.ID, err)
		}
	}

	snap := sess.Snapshot()
	updateSessionRecord(snap)
	Stream.Broadcast(sess.ID, services.Event{Type: "finished", UserID: telegramID, Line: line, State: &snap})
	logger.Infof("session %d won by %d (%s), pool %.2f", sess.ID, telegramID, line, pool)
	return true
}

// GetSessionStatus returns a consistent snapshot of a session.
func GetSessionStatus(c *gin.Context) {
	sess, ok := sessionFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ListSessions returns the archived session records, newest first.
func ListSessions(c *gin.Context) {
	var records []models.Session
	if err := config.DB.Order("created_at DESC").Limit(50).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func sessionFromPath(c *gin.Context) (*game.Session, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	sess, err := Sessions.Get(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return sess, true
}

// updateSessionRecord mirrors the live state into the archive row.
func updateSessionRecord(snap game.Snapshot) {
	updates := map[string]any{
		"status":  string(snap.Status),
		"pool":    snap.Pool,
		"players": snap.Players,
	}
	if b, err := json.Marshal(snap.Drawn); err == nil {
		updates["drawn_numbers"] = datatypes.JSON(b)
	}
	if snap.Status == game.StatusFinished {
		now := time.Now()
		updates["winner_id"] = snap.Winner
		updates["finished_at"] = &now
	}
	if err := config.DB.Model(&models.Session{}).Where("id = ?", snap.ID).Updates(updates).Error; err != nil {
		logger.Errorf("archiving session %d: %v", snap.ID, err)
	}
}

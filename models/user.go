package models

import "time"

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TelegramID  int64     `gorm:"uniqueIndex" json:"telegram_id"`
	Username    string    `json:"username"`
	Phone       string    `gorm:"index" json:"phone"`
	Balance     float64   `json:"balance"`
	GamesPlayed int       `json:"games_played"`
	GamesWon    int       `json:"games_won"`
	ReferrerID  *int64    `json:"referrer_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

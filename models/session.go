package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is the durable archive row for a game. The live state is owned by
// the in-memory engine; this record is written at creation and updated as
// numbers are drawn so a finished game survives process restarts.
type Session struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Stake        int            `json:"stake"` // 10, 20, 50, 100
	Status       string         `json:"status"`
	Pool         float64        `json:"pool"`
	Players      int            `json:"players"`
	DrawnNumbers datatypes.JSON `json:"drawn_numbers"`
	WinnerID     *int64         `json:"winner_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

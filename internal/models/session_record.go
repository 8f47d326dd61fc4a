package models

import "gorm.io/gorm"

// SessionRecord represents one betting session from start to terminal state.
type SessionRecord struct {
	gorm.Model
	SessionID       string `gorm:"uniqueIndex;not null" json:"session_id"`
	Strategy        string `json:"strategy"`
	Currency        string `json:"currency"`
	StartingBalance string `json:"starting_balance"`
	FinalBalance    string `json:"final_balance"`
	BetsPlaced      int    `json:"bets_placed"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	TotalWagered    string `json:"total_wagered"`
	NetProfit       string `json:"net_profit"`
	StopReason      string `json:"stop_reason"`
	StartedAt       int64  `json:"started_at"`
	EndedAt         int64  `json:"ended_at"`
}

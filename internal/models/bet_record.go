package models

import "gorm.io/gorm"

// BetRecord represents one settled betting round in the database.
// Monetary fields are stored as decimal strings to keep them exact.
type BetRecord struct {
	gorm.Model
	SessionID    string `gorm:"index;not null" json:"session_id"`
	RoundIndex   int    `gorm:"not null" json:"round_index"`
	Currency     string `json:"currency"`
	Amount       string `json:"amount"`
	WinChance    string `json:"win_chance"`
	Direction    string `json:"direction"` // "high" or "low"
	Won          bool   `json:"won"`
	Roll         string `json:"roll"`
	Payout       string `json:"payout"`
	Profit       string `json:"profit"`
	BalanceAfter string `json:"balance_after"`
	LossStreak   int    `json:"loss_streak"`
	WinStreak    int    `json:"win_streak"`
}

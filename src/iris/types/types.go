package types

import "time"

// Settings
type Setting struct {
	ID     uint8  `gorm:"primaryKey"`
	Name   string `gorm:"size:32;not null"`
	Value  string `gorm:"size:256;not null"`
	Active uint8  `gorm:"not null"`
}

// ReplyLog records every reply the bot posts. Observability only: the
// pipeline never reads it back, idempotency lives in Redis.
type ReplyLog struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	MessageID  string `gorm:"size:64;index"`
	ChannelID  string `gorm:"size:64"`
	Author     string `gorm:"size:64"`
	Terms      string `gorm:"type:text"`
	EntryCount int
	CreatedAt  time.Time
}

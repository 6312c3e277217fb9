package models

import "time"

// VerificationLog is the append-only audit stream of public verification
// attempts. Rows are never updated or deleted.
type VerificationLog struct {
	ID        uint   `gorm:"primaryKey"`
	Hash      string `gorm:"index;not null"`
	Verified  bool   `gorm:"not null"`
	ClientIP  string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

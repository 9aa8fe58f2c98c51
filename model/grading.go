package model

import "time"

// GradingRecord is the stored outcome of grading one submission of a batch.
type GradingRecord struct {
	ID         uint64 `gorm:"primaryKey"`
	BatchID    string `gorm:"size:64;uniqueIndex:uk_batch_file"`
	Filename   string `gorm:"size:255;uniqueIndex:uk_batch_file"`
	Identifier string `gorm:"size:128;index"`
	Score      float64
	Possible   float64
	Results    string `gorm:"type:mediumtext"`
	Error      string `gorm:"type:text"`
	DurationMs int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

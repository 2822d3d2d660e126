package models

import "time"

// IncomingWebhookLog records every webhook delivery attempt. The row is
// created before any validation and committed independently of the
// reconciliation unit of work, so failed deliveries stay visible for replay.
type IncomingWebhookLog struct {
	ID        uint   `gorm:"primarykey"`
	Provider  string `gorm:"index"`
	Request   JSON   `gorm:"type:jsonb"`
	Response  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

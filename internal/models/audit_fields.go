package models

import "time"

// AuditFields are the creation columns shared by commerce rows.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

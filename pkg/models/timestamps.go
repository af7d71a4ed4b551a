package models

import "time"

// Timestamps is embedded by every record. Stores set it on write.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Timestamps) Stamps() *Timestamps { return t }

// Touch records a write at now. CreatedAt is only set the first time.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

package models

import "time"

const (
	DiscountUsageSingle   = "single"
	DiscountUsageMultiple = "multiple"
)

type DiscountCode struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Percent     int       `json:"percent"`
	Usage       string    `json:"usage"`
	MaxUses     int       `json:"max_uses"`
	CurrentUses int       `json:"current_uses"`
	ExpireDate  time.Time `json:"expire_date"`
	LocationID  *int64    `json:"location_id,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d *DiscountCode) Expired(now time.Time) bool {
	return !d.ExpireDate.After(now)
}

// Usable reports whether the code can still be redeemed.
func (d *DiscountCode) Usable(now time.Time) bool {
	if !d.Active || d.Expired(now) {
		return false
	}
	if d.Usage == DiscountUsageSingle {
		return d.CurrentUses == 0
	}
	return d.CurrentUses < d.MaxUses
}

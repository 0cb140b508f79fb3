package course

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Coupon struct {
	gorm.Model
	Code            string          `json:"code" gorm:"uniqueIndex;size:50;not null"`
	InstructorID    *uint           `json:"instructor_id" gorm:"index"` // nil = platform-wide
	Courses         []Course        `json:"courses,omitempty" gorm:"many2many:coupon_courses;"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:decimal(5,2);not null"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	MaxUses         int             `json:"max_uses" gorm:"not null;default:100"`
	CurrentUses     int             `json:"current_uses" gorm:"not null;default:0"`
}

// IsValid reports whether the coupon is unexpired with uses remaining at instant now.
func (c Coupon) IsValid(now time.Time) bool {
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	return c.CurrentUses < c.MaxUses
}

// AppliesTo reports whether courseID passes the allowlist. An empty allowlist admits every course.
func (c Coupon) AppliesTo(courseID uint) bool {
	if len(c.Courses) == 0 {
		return true
	}
	for _, course := range c.Courses {
		if course.ID == courseID {
			return true
		}
	}
	return false
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

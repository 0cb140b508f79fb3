package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// DefaultCommission is the platform's share (percent) of an instructor sale.
var DefaultCommission = decimal.NewFromInt(15)

type User struct {
	gorm.Model
	Name           string          `json:"name" gorm:"default:''"`
	Email          string          `json:"email" gorm:"uniqueIndex;not null"`
	Bio            string          `json:"bio" gorm:"type:text;default:''"`
	Role           Role            `json:"role" gorm:"type:varchar(20);default:'student';index"`
	Verified       bool            `json:"verified" gorm:"default:false"`
	VerifiedEntity string          `json:"verified_entity" gorm:"default:''"`
	Commission     decimal.Decimal `json:"commission" gorm:"type:decimal(5,2);not null;default:15"`
	PointsTotal    int             `json:"points_total" gorm:"not null;default:0"` // cached sum of PointsEntry
	XPTotal        int             `json:"xp_total" gorm:"not null;default:0"`
}

func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// PublicUser is the profile shown next to courses, reviews and forum posts. It reads the
// users table but never carries email, commission or totals.
type PublicUser struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	Verified       bool   `json:"verified"`
	VerifiedEntity string `json:"verified_entity"`
}

func (PublicUser) TableName() string { return "users" }

package models

import "gorm.io/gorm"

// PointsEntry is an append-only ledger row. User.PointsTotal mirrors the sum of these.
type PointsEntry struct {
	gorm.Model
	StudentID uint   `json:"student_id" gorm:"index;not null"`
	Points    int    `json:"points" gorm:"not null"`
	Reason    string `json:"reason" gorm:"size:255;not null"`
}

type Badge struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`
	Criteria    string `json:"criteria" gorm:"type:text"`
	IconURL     string `json:"icon_url"`
}

type BadgeAward struct {
	gorm.Model
	StudentID uint  `json:"student_id" gorm:"uniqueIndex:idx_badge_award_student_badge;not null"`
	BadgeID   uint  `json:"badge_id" gorm:"uniqueIndex:idx_badge_award_student_badge;not null"`
	Badge     Badge `json:"badge" gorm:"foreignKey:BadgeID"`
}

type Reward struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:150;not null"`
	Description string `json:"description" gorm:"type:text"`
	CostPoints  int    `json:"cost_points" gorm:"not null"`
	Active      bool   `json:"active" gorm:"default:true"`
}

type RewardRedemption struct {
	gorm.Model
	StudentID   uint   `json:"student_id" gorm:"index;not null"`
	RewardID    uint   `json:"reward_id" gorm:"index;not null"`
	Reward      Reward `json:"reward" gorm:"foreignKey:RewardID"`
	PointsSpent int    `json:"points_spent" gorm:"not null"`
}

package services

import (
	"fmt"

	"cursapp/apperr"
	"cursapp/logger"
	"cursapp/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	LessonCompletionXP = 10
	QuizPassXP         = 50
)

func addXP(tx *gorm.DB, studentID uint, xp int) error {
	res := tx.Model(&models.User{}).Where("id = ?", studentID).
		UpdateColumn("xp_total", gorm.Expr("xp_total + ?", xp))
	if res.Error != nil {
		return errors.Wrap(res.Error, "add xp")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Student not found!")
	}
	return nil
}

// AwardLessonCompletion is called once per lesson, on its first completion.
func AwardLessonCompletion(tx *gorm.DB, studentID uint) error {
	return addXP(tx, studentID, LessonCompletionXP)
}

// AwardQuizPass is called once per quiz, on the first passing attempt.
func AwardQuizPass(tx *gorm.DB, studentID uint) error {
	return addXP(tx, studentID, QuizPassXP)
}

// AppendPoints writes a ledger row and moves the cached total by the same delta.
// It is the only writer of users.points_total.
func AppendPoints(tx *gorm.DB, studentID uint, delta int, reason string) (*models.PointsEntry, error) {
	entry := models.PointsEntry{StudentID: studentID, Points: delta, Reason: reason}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, errors.Wrap(err, "append points entry")
	}
	res := tx.Model(&models.User{}).Where("id = ?", studentID).
		UpdateColumn("points_total", gorm.Expr("points_total + ?", delta))
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update points total")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Student not found!")
	}
	return &entry, nil
}

// GrantPoints lets an operator add or deduct points. Totals never go negative.
func GrantPoints(db *gorm.DB, studentID uint, delta int, reason string) (*models.PointsEntry, error) {
	if delta == 0 {
		return nil, apperr.Validation("Points must not be zero!")
	}
	var entry *models.PointsEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		student, err := loadUser(tx, studentID)
		if err != nil {
			return err
		}
		if student.Role != models.RoleStudent {
			return apperr.Validation("Points can only be granted to students!")
		}
		if student.PointsTotal+delta < 0 {
			return apperr.Validation("Insufficient points!")
		}
		entry, err = AppendPoints(tx, studentID, delta, reason)
		return err
	})
	return entry, err
}

// RedeemReward spends the reward's cost from the student's points.
func RedeemReward(db *gorm.DB, studentID, rewardID uint) (*models.RewardRedemption, error) {
	var redemption models.RewardRedemption
	err := db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.Where("id = ? AND active = ?", rewardID, true).First(&reward).Error; err != nil {
			if isNotFound(err) {
				return apperr.NotFound("Reward not found!")
			}
			return errors.Wrap(err, "load reward")
		}
		student, err := loadUser(tx, studentID)
		if err != nil {
			return err
		}
		if student.PointsTotal < reward.CostPoints {
			return apperr.Validation("Not enough points to redeem this reward!")
		}

		if _, err := AppendPoints(tx, studentID, -reward.CostPoints, fmt.Sprintf("Reward redeemed: %s", reward.Name)); err != nil {
			return err
		}
		redemption = models.RewardRedemption{
			StudentID:   studentID,
			RewardID:    reward.ID,
			PointsSpent: reward.CostPoints,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return errors.Wrap(err, "create redemption")
		}
		redemption.Reward = reward
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// AwardBadge grants a badge once per student.
func AwardBadge(db *gorm.DB, studentID, badgeID uint) (*models.BadgeAward, error) {
	var award models.BadgeAward
	err := db.Transaction(func(tx *gorm.DB) error {
		var badge models.Badge
		if err := tx.First(&badge, badgeID).Error; err != nil {
			if isNotFound(err) {
				return apperr.NotFound("Badge not found!")
			}
			return errors.Wrap(err, "load badge")
		}
		student, err := loadUser(tx, studentID)
		if err != nil {
			return err
		}
		if student.Role != models.RoleStudent {
			return apperr.Validation("Badges can only be awarded to students!")
		}

		var count int64
		if err := tx.Model(&models.BadgeAward{}).
			Where("student_id = ? AND badge_id = ?", studentID, badgeID).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "check badge award")
		}
		if count > 0 {
			return apperr.Conflict("Badge already awarded to this student!")
		}

		award = models.BadgeAward{StudentID: studentID, BadgeID: badgeID}
		if err := tx.Create(&award).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Badge already awarded to this student!")
			}
			return errors.Wrap(err, "create badge award")
		}
		award.Badge = badge
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &award, nil
}

type LeaderboardEntry struct {
	StudentID   uint   `json:"student_id"`
	Name        string `json:"name"`
	XPTotal     int    `json:"xp_total"`
	PointsTotal int    `json:"points_total"`
}

func Leaderboard(db *gorm.DB, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []models.User
	if err := db.Where("role = ?", models.RoleStudent).
		Order("xp_total DESC").Order("points_total DESC").Order("id ASC").
		Limit(limit).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "load leaderboard")
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{StudentID: u.ID, Name: u.Name, XPTotal: u.XPTotal, PointsTotal: u.PointsTotal})
	}
	return entries, nil
}

type PointsDrift struct {
	StudentID uint `json:"student_id"`
	Cached    int  `json:"cached"`
	Ledger    int  `json:"ledger"`
}

// AuditPointTotals compares cached totals against the ledger and logs every mismatch.
// It never rewrites totals.
func AuditPointTotals(db *gorm.DB) ([]PointsDrift, error) {
	var sums []struct {
		StudentID uint
		Total     int
	}
	if err := db.Model(&models.PointsEntry{}).
		Select("student_id, COALESCE(SUM(points), 0) AS total").
		Group("student_id").
		Scan(&sums).Error; err != nil {
		return nil, errors.Wrap(err, "sum points ledger")
	}
	ledger := make(map[uint]int, len(sums))
	for _, s := range sums {
		ledger[s.StudentID] = s.Total
	}

	var users []models.User
	if err := db.Select("id", "points_total").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "load point totals")
	}

	var drift []PointsDrift
	for _, u := range users {
		if u.PointsTotal != ledger[u.ID] {
			d := PointsDrift{StudentID: u.ID, Cached: u.PointsTotal, Ledger: ledger[u.ID]}
			drift = append(drift, d)
			logger.L().Warn("points total drift", "student", d.StudentID, "cached", d.Cached, "ledger", d.Ledger)
		}
	}
	return drift, nil
}

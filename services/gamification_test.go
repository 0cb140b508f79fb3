package services_test

import (
	"net/http"
	"testing"

	"cursapp/models"
	"cursapp/services"
	"cursapp/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ledgerSum(t *testing.T, db *gorm.DB, studentID uint) int {
	t.Helper()
	var sum int
	require.NoError(t, db.Model(&models.PointsEntry{}).
		Select("COALESCE(SUM(points), 0)").
		Where("student_id = ?", studentID).
		Scan(&sum).Error)
	return sum
}

func TestGrantPointsKeepsLedgerInSync(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)

	_, err := services.GrantPoints(db, student.ID, 100, "welcome bonus")
	require.NoError(t, err)
	entry, err := services.GrantPoints(db, student.ID, -30, "correction")
	require.NoError(t, err)
	assert.Equal(t, -30, entry.Points)

	u := reloadUser(t, db, student.ID)
	assert.Equal(t, 70, u.PointsTotal)
	assert.Equal(t, u.PointsTotal, ledgerSum(t, db, student.ID))

	_, err = services.GrantPoints(db, student.ID, -71, "too much")
	requireStatus(t, err, http.StatusBadRequest)
	_, err = services.GrantPoints(db, student.ID, 0, "nothing")
	requireStatus(t, err, http.StatusBadRequest)
	_, err = services.GrantPoints(db, instructor.ID, 10, "not a student")
	requireStatus(t, err, http.StatusBadRequest)
	_, err = services.GrantPoints(db, 9999, 10, "ghost")
	requireStatus(t, err, http.StatusNotFound)

	assert.Equal(t, 70, reloadUser(t, db, student.ID).PointsTotal)
}

func TestRedeemReward(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	reward := models.Reward{Name: "Sticker pack", CostPoints: 50, Active: true}
	require.NoError(t, db.Create(&reward).Error)

	_, err := services.GrantPoints(db, student.ID, 70, "contest")
	require.NoError(t, err)

	redemption, err := services.RedeemReward(db, student.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, redemption.PointsSpent)
	assert.Equal(t, "Sticker pack", redemption.Reward.Name)

	u := reloadUser(t, db, student.ID)
	assert.Equal(t, 20, u.PointsTotal)
	assert.Equal(t, 20, ledgerSum(t, db, student.ID))

	_, err = services.RedeemReward(db, student.ID, reward.ID)
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, db.Model(&reward).Update("active", false).Error)
	_, err = services.RedeemReward(db, student.ID, reward.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAwardBadgeOnce(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	badge := models.Badge{Name: "Early bird"}
	require.NoError(t, db.Create(&badge).Error)

	award, err := services.AwardBadge(db, student.ID, badge.ID)
	require.NoError(t, err)
	assert.Equal(t, "Early bird", award.Badge.Name)

	_, err = services.AwardBadge(db, student.ID, badge.ID)
	requireStatus(t, err, http.StatusConflict)

	_, err = services.AwardBadge(db, student.ID, 9999)
	requireStatus(t, err, http.StatusNotFound)
}

func TestLeaderboardOrdering(t *testing.T) {
	db := testutil.SetupDB(t)
	a := testutil.SeedUser(t, db, models.RoleStudent)
	b := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedUser(t, db, models.RoleStudent)
	testutil.SeedUser(t, db, models.RoleInstructor)

	require.NoError(t, db.Model(&a).UpdateColumns(map[string]interface{}{"xp_total": 50, "points_total": 1}).Error)
	require.NoError(t, db.Model(&b).UpdateColumns(map[string]interface{}{"xp_total": 50, "points_total": 9}).Error)
	require.NoError(t, db.Model(&c).UpdateColumns(map[string]interface{}{"xp_total": 80}).Error)

	entries, err := services.Leaderboard(db, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, c.ID, entries[0].StudentID)
	assert.Equal(t, b.ID, entries[1].StudentID)
	assert.Equal(t, a.ID, entries[2].StudentID)

	top, err := services.Leaderboard(db, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestAuditPointTotalsReportsDrift(t *testing.T) {
	db := testutil.SetupDB(t)
	clean := testutil.SeedUser(t, db, models.RoleStudent)
	drifted := testutil.SeedUser(t, db, models.RoleStudent)

	_, err := services.GrantPoints(db, clean.ID, 10, "ok")
	require.NoError(t, err)
	_, err = services.GrantPoints(db, drifted.ID, 10, "ok")
	require.NoError(t, err)
	require.NoError(t, db.Model(&drifted).UpdateColumn("points_total", 99).Error)

	drift, err := services.AuditPointTotals(db)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, drifted.ID, drift[0].StudentID)
	assert.Equal(t, 99, drift[0].Cached)
	assert.Equal(t, 10, drift[0].Ledger)

	// audit never rewrites
	assert.Equal(t, 99, reloadUser(t, db, drifted.ID).PointsTotal)
}

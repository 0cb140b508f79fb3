package testutil

import (
	"fmt"
	"testing"

	"cursapp/config"
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	JWTKey        = "test-jwt-key"
	WebhookSecret = "test-webhook-secret"
)

// SetupDB opens a private in-memory SQLite database, migrates it and installs it as
// database.Database together with a test configuration.
func SetupDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(tb, err)
	require.NoError(tb, database.RunMigrations(db))

	cfg := config.FromEnv()
	cfg.JWTKey = JWTKey
	cfg.WebhookSecret = WebhookSecret
	cfg.SendgridAPIKey = ""
	cfg.RedisAddr = ""
	cfg.VideoProcessingDelay = 0

	prevDB, prevCfg := database.Database, config.AppConfig
	database.Database = database.DbInstance{Db: db}
	config.AppConfig = cfg

	tb.Cleanup(func() {
		database.Database, config.AppConfig = prevDB, prevCfg
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, role models.Role) models.User {
	tb.Helper()
	user := models.User{
		Name:       string(role) + " " + uuid.NewString()[:8],
		Email:      uuid.NewString() + "@example.com",
		Role:       role,
		Commission: models.DefaultCommission,
	}
	require.NoError(tb, db.Create(&user).Error)
	return user
}

// SeedCourse creates a course owned by instructorID (0 means no instructor).
func SeedCourse(tb testing.TB, db *gorm.DB, instructorID uint, price string, status course.CourseStatus) course.Course {
	tb.Helper()
	c := course.Course{
		Title:    "Course " + uuid.NewString(),
		PriceUSD: decimal.RequireFromString(price),
		Status:   status,
	}
	if instructorID != 0 {
		id := instructorID
		c.InstructorID = &id
	}
	require.NoError(tb, db.Create(&c).Error)
	return c
}

func SeedCategory(tb testing.TB, db *gorm.DB, name string) course.Category {
	tb.Helper()
	cat := course.Category{Name: name, Slug: name}
	require.NoError(tb, db.Create(&cat).Error)
	return cat
}

func SeedModule(tb testing.TB, db *gorm.DB, courseID uint, order int) course.Module {
	tb.Helper()
	m := course.Module{CourseID: courseID, Title: fmt.Sprintf("Module %d", order), Order: order}
	require.NoError(tb, db.Create(&m).Error)
	return m
}

func SeedLesson(tb testing.TB, db *gorm.DB, module course.Module, lessonType course.LessonType, order int) course.Lesson {
	tb.Helper()
	l := course.Lesson{
		ModuleID: module.ID,
		CourseID: module.CourseID,
		Title:    fmt.Sprintf("Lesson %d", order),
		Type:     lessonType,
		Order:    order,
	}
	require.NoError(tb, db.Create(&l).Error)
	return l
}

func SeedEnrollment(tb testing.TB, db *gorm.DB, studentID, courseID uint, status evaluation.PaymentStatus, price string) evaluation.Enrollment {
	tb.Helper()
	e := evaluation.Enrollment{
		StudentID:     studentID,
		CourseID:      courseID,
		PricePaidUSD:  decimal.RequireFromString(price),
		PaymentStatus: status,
	}
	require.NoError(tb, db.Create(&e).Error)
	return e
}

// BearerToken returns an Authorization header value for user.
func BearerToken(tb testing.TB, user models.User) string {
	tb.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.Name, string(user.Role), user.Email)
	require.NoError(tb, err)
	return "Bearer " + token
}

package database

import (
	"fmt"
	"time"

	"cursapp/config"
	"cursapp/logger"
	"cursapp/models"
	"cursapp/models/community"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	cfg := config.AppConfig
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.L().Fatal("failed to connect to postgres", "error", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.L().Fatal("failed to get database instance", "error", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := RunMigrations(db); err != nil {
		logger.L().Fatal("migration failed", "error", err)
	}

	Database = DbInstance{Db: db}
}

// RunMigrations creates or updates every table plus the indexes AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	logger.L().Info("running migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.PointsEntry{},
		&models.Badge{},
		&models.BadgeAward{},
		&models.Reward{},
		&models.RewardRedemption{},

		&course.Category{},
		&course.Tag{},
		&course.Course{},
		&course.Module{},
		&course.Lesson{},
		&course.Quiz{},
		&course.Question{},
		&course.Option{},
		&course.Coupon{},

		&evaluation.Enrollment{},
		&evaluation.Settlement{},
		&evaluation.LessonProgress{},
		&evaluation.LessonInteraction{},
		&evaluation.QuizAttempt{},
		&evaluation.Review{},
		&evaluation.Certificate{},

		&community.ForumQuestion{},
		&community.ForumAnswer{},
	)
	if err != nil {
		return err
	}

	// one live enrollment per (student, course); failed ones may be retried
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollment_active_student_course
		ON enrollments (student_id, course_id)
		WHERE payment_status <> 'failed' AND deleted_at IS NULL`).Error; err != nil {
		return err
	}

	// titles are unique among live courses, so a deleted course frees its title
	if err := db.Exec(`DROP INDEX IF EXISTS idx_courses_title`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_course_live_title
		ON courses (title)
		WHERE deleted_at IS NULL`).Error; err != nil {
		return err
	}

	logger.L().Info("migrations completed")
	return nil
}

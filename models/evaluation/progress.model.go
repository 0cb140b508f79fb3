package evaluation

import (
	"time"

	"gorm.io/gorm"
)

// SCORM 1.2 cmi.core.lesson_status values.
const (
	SCORMPassed       = "passed"
	SCORMCompleted    = "completed"
	SCORMFailed       = "failed"
	SCORMIncomplete   = "incomplete"
	SCORMBrowsed      = "browsed"
	SCORMNotAttempted = "not attempted"
)

// cmi.core.entry values.
const (
	EntryAbInitio = "ab-initio"
	EntryResume   = "resume"
)

type LessonProgress struct {
	gorm.Model
	EnrollmentID  uint       `json:"enrollment_id" gorm:"uniqueIndex:idx_progress_enrollment_lesson;not null"`
	LessonID      uint       `json:"lesson_id" gorm:"uniqueIndex:idx_progress_enrollment_lesson;not null"`
	MinutesSpent  int        `json:"minutes_spent" gorm:"not null;default:0"`
	PercentViewed int        `json:"percent_viewed" gorm:"not null;default:0"`
	Completed     bool       `json:"completed" gorm:"default:false"`
	CompletedAt   *time.Time `json:"completed_at"`

	LessonStatus string   `json:"lesson_status" gorm:"size:20;default:'not attempted'"`
	ScoreRaw     *float64 `json:"score_raw"`
	SuspendData  string   `json:"suspend_data" gorm:"type:text"`
	Entry        string   `json:"entry" gorm:"size:10;default:'ab-initio'"`
}

// LessonInteraction is the implicit-interest signal feeding recommendations.
type LessonInteraction struct {
	gorm.Model
	StudentID  uint      `json:"student_id" gorm:"uniqueIndex:idx_interaction_student_lesson;not null"`
	LessonID   uint      `json:"lesson_id" gorm:"uniqueIndex:idx_interaction_student_lesson;not null"`
	Interest   int       `json:"interest" gorm:"not null;default:0"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type Certificate struct {
	gorm.Model
	StudentID uint      `json:"student_id" gorm:"uniqueIndex:idx_certificate_student_course;not null"`
	CourseID  uint      `json:"course_id" gorm:"uniqueIndex:idx_certificate_student_course;not null"`
	Code      string    `json:"code" gorm:"uniqueIndex;size:36;not null"`
	IssuedAt  time.Time `json:"issued_at"`
}

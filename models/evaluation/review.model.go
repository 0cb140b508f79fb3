package evaluation

import (
	"cursapp/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review belongs to exactly one enrollment.
type Review struct {
	gorm.Model
	EnrollmentID      uint               `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	CourseID          uint               `json:"course_id" gorm:"index;not null"`
	StudentID         uint               `json:"student_id" gorm:"index;not null"`
	Student           *models.PublicUser `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Overall           int                `json:"overall" gorm:"not null;check:overall >= 1 AND overall <= 5"`
	ContentQuality    int                `json:"content_quality" gorm:"not null;check:content_quality >= 1 AND content_quality <= 5"`
	Clarity           int                `json:"clarity" gorm:"not null;check:clarity >= 1 AND clarity <= 5"`
	PracticalValue    int                `json:"practical_value" gorm:"not null;check:practical_value >= 1 AND practical_value <= 5"`
	InstructorSupport int                `json:"instructor_support" gorm:"not null;check:instructor_support >= 1 AND instructor_support <= 5"`
	Comment           string             `json:"comment" gorm:"type:text;default:''"`
}

type QuizAttempt struct {
	gorm.Model
	EnrollmentID  uint           `json:"enrollment_id" gorm:"index;not null"`
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	Answers       datatypes.JSON `json:"answers"`
	Score         int            `json:"score"`
	MaxScore      int            `json:"max_score"`
	Passed        bool           `json:"passed" gorm:"default:false"`
	AttemptNumber int            `json:"attempt_number" gorm:"default:1"`
}

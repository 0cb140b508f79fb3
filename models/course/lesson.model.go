package course

import "gorm.io/gorm"

type LessonType string

const (
	LessonVideo    LessonType = "video"
	LessonDocument LessonType = "document"
	LessonQuiz     LessonType = "quiz"
	LessonSCORM    LessonType = "scorm"
	LessonArticle  LessonType = "article"
)

type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingError      ProcessingStatus = "error"
)

type Lesson struct {
	gorm.Model
	ModuleID         uint             `json:"module_id" gorm:"uniqueIndex:idx_lesson_module_order;not null"`
	CourseID         uint             `json:"course_id" gorm:"index;not null"`
	Title            string           `json:"title" gorm:"size:200;not null"`
	Type             LessonType       `json:"type" gorm:"type:varchar(20);not null"`
	ArticleBody      string           `json:"article_body,omitempty" gorm:"type:text"`
	FileURL          string           `json:"file_url,omitempty"`
	DurationMinutes  int              `json:"duration_minutes" gorm:"default:0"`
	Order            int              `json:"order" gorm:"column:sort_order;uniqueIndex:idx_lesson_module_order;not null"`
	ProcessingStatus ProcessingStatus `json:"processing_status" gorm:"type:varchar(20);default:'pending'"`
}

// Quiz is attached one-to-one to a quiz lesson.
type Quiz struct {
	gorm.Model
	LessonID     uint       `json:"lesson_id" gorm:"uniqueIndex;not null"`
	PassingScore int        `json:"passing_score" gorm:"not null;default:70"` // percent
	MaxAttempts  int        `json:"max_attempts" gorm:"not null;default:3"`
	Questions    []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type Question struct {
	gorm.Model
	QuizID  uint     `json:"quiz_id" gorm:"index;not null"`
	Text    string   `json:"text" gorm:"type:text;not null"`
	Points  int      `json:"points" gorm:"not null;default:1"`
	Order   int      `json:"order" gorm:"column:sort_order;default:0"`
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text" gorm:"size:255;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

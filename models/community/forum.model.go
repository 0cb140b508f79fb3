package community

import (
	"cursapp/models"

	"gorm.io/gorm"
)

type ForumQuestion struct {
	gorm.Model
	LessonID uint               `json:"lesson_id" gorm:"index;not null"`
	AuthorID uint               `json:"author_id" gorm:"index;not null"`
	Author   *models.PublicUser `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Title    string             `json:"title" gorm:"size:200;not null"`
	Body     string             `json:"body" gorm:"type:text;not null"`
	Answers  []ForumAnswer      `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

type ForumAnswer struct {
	gorm.Model
	QuestionID uint               `json:"question_id" gorm:"index;not null"`
	AuthorID   uint               `json:"author_id" gorm:"index;not null"`
	Author     *models.PublicUser `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Body       string             `json:"body" gorm:"type:text;not null"`
	Useful     bool               `json:"useful" gorm:"default:false"`
}

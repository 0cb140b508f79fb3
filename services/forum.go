package services

import (
	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/community"
	"cursapp/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// LessonPath identifies a lesson through its parents, as it appears in forum URLs.
type LessonPath struct {
	CourseID uint
	ModuleID uint
	LessonID uint
}

type ForumPostInput struct {
	Title string
	Body  string
}

type forumScope struct {
	course course.Course
	lesson course.Lesson
}

// resolveForumScope checks the lesson → module → course chain and the read/write gate:
// a paid enrollment, the course instructor or an admin.
func resolveForumScope(tx *gorm.DB, user models.User, path LessonPath) (forumScope, error) {
	var scope forumScope
	err := tx.Where("id = ? AND module_id = ? AND course_id = ?", path.LessonID, path.ModuleID, path.CourseID).
		First(&scope.lesson).Error
	if err != nil {
		if isNotFound(err) {
			return scope, apperr.NotFound("Lesson not found!")
		}
		return scope, errors.Wrap(err, "load lesson")
	}
	if err := tx.First(&scope.course, path.CourseID).Error; err != nil {
		if isNotFound(err) {
			return scope, apperr.NotFound("Course not found!")
		}
		return scope, errors.Wrap(err, "load course")
	}

	if user.IsAdmin() || scope.course.IsOwnedBy(user.ID) {
		return scope, nil
	}
	ok, err := HasPaidEnrollment(tx, user.ID, path.CourseID)
	if err != nil {
		return scope, err
	}
	if !ok {
		return scope, apperr.Forbidden("You need a paid enrollment to use this forum!")
	}
	return scope, nil
}

func loadQuestion(tx *gorm.DB, lessonID, questionID uint) (community.ForumQuestion, error) {
	var q community.ForumQuestion
	if err := tx.Where("id = ? AND lesson_id = ?", questionID, lessonID).First(&q).Error; err != nil {
		if isNotFound(err) {
			return q, apperr.NotFound("Question not found!")
		}
		return q, errors.Wrap(err, "load question")
	}
	return q, nil
}

func loadAnswer(tx *gorm.DB, questionID, answerID uint) (community.ForumAnswer, error) {
	var a community.ForumAnswer
	if err := tx.Where("id = ? AND question_id = ?", answerID, questionID).First(&a).Error; err != nil {
		if isNotFound(err) {
			return a, apperr.NotFound("Answer not found!")
		}
		return a, errors.Wrap(err, "load answer")
	}
	return a, nil
}

func ListQuestions(db *gorm.DB, user models.User, path LessonPath) ([]community.ForumQuestion, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	var questions []community.ForumQuestion
	if err := db.Preload("Author").Where("lesson_id = ?", path.LessonID).
		Order("created_at DESC").Order("id DESC").Find(&questions).Error; err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	return questions, nil
}

func GetQuestion(db *gorm.DB, user models.User, path LessonPath, questionID uint) (*community.ForumQuestion, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	var q community.ForumQuestion
	err := db.Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("useful DESC").Order("created_at ASC") }).
		Preload("Answers.Author").
		Where("id = ? AND lesson_id = ?", questionID, path.LessonID).First(&q).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Question not found!")
		}
		return nil, errors.Wrap(err, "load question")
	}
	return &q, nil
}

func CreateQuestion(db *gorm.DB, user models.User, path LessonPath, in ForumPostInput) (*community.ForumQuestion, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	q := community.ForumQuestion{LessonID: path.LessonID, AuthorID: user.ID, Title: in.Title, Body: in.Body}
	if err := db.Create(&q).Error; err != nil {
		return nil, errors.Wrap(err, "create question")
	}
	return &q, nil
}

// UpdateQuestion is author-only.
func UpdateQuestion(db *gorm.DB, user models.User, path LessonPath, questionID uint, in ForumPostInput) (*community.ForumQuestion, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	q, err := loadQuestion(db, path.LessonID, questionID)
	if err != nil {
		return nil, err
	}
	if q.AuthorID != user.ID {
		return nil, apperr.Forbidden("You can only edit your own posts!")
	}
	if err := db.Model(&q).Updates(map[string]interface{}{"title": in.Title, "body": in.Body}).Error; err != nil {
		return nil, errors.Wrap(err, "update question")
	}
	q.Title, q.Body = in.Title, in.Body
	return &q, nil
}

// DeleteQuestion is author-only and removes the question's answers with it.
func DeleteQuestion(db *gorm.DB, user models.User, path LessonPath, questionID uint) error {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		q, err := loadQuestion(tx, path.LessonID, questionID)
		if err != nil {
			return err
		}
		if q.AuthorID != user.ID {
			return apperr.Forbidden("You can only delete your own posts!")
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&community.ForumAnswer{}).Error; err != nil {
			return errors.Wrap(err, "delete answers")
		}
		return errors.Wrap(tx.Delete(&q).Error, "delete question")
	})
}

func ListAnswers(db *gorm.DB, user models.User, path LessonPath, questionID uint) ([]community.ForumAnswer, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	if _, err := loadQuestion(db, path.LessonID, questionID); err != nil {
		return nil, err
	}
	var answers []community.ForumAnswer
	if err := db.Preload("Author").Where("question_id = ?", questionID).
		Order("useful DESC").Order("created_at ASC").Find(&answers).Error; err != nil {
		return nil, errors.Wrap(err, "list answers")
	}
	return answers, nil
}

func CreateAnswer(db *gorm.DB, user models.User, path LessonPath, questionID uint, body string) (*community.ForumAnswer, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	if _, err := loadQuestion(db, path.LessonID, questionID); err != nil {
		return nil, err
	}
	a := community.ForumAnswer{QuestionID: questionID, AuthorID: user.ID, Body: body}
	if err := db.Create(&a).Error; err != nil {
		return nil, errors.Wrap(err, "create answer")
	}
	return &a, nil
}

// UpdateAnswer is author-only.
func UpdateAnswer(db *gorm.DB, user models.User, path LessonPath, questionID, answerID uint, body string) (*community.ForumAnswer, error) {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return nil, err
	}
	if _, err := loadQuestion(db, path.LessonID, questionID); err != nil {
		return nil, err
	}
	a, err := loadAnswer(db, questionID, answerID)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != user.ID {
		return nil, apperr.Forbidden("You can only edit your own posts!")
	}
	if err := db.Model(&a).Update("body", body).Error; err != nil {
		return nil, errors.Wrap(err, "update answer")
	}
	a.Body = body
	return &a, nil
}

// DeleteAnswer is author-only.
func DeleteAnswer(db *gorm.DB, user models.User, path LessonPath, questionID, answerID uint) error {
	if _, err := resolveForumScope(db, user, path); err != nil {
		return err
	}
	if _, err := loadQuestion(db, path.LessonID, questionID); err != nil {
		return err
	}
	a, err := loadAnswer(db, questionID, answerID)
	if err != nil {
		return err
	}
	if a.AuthorID != user.ID {
		return apperr.Forbidden("You can only delete your own posts!")
	}
	return errors.Wrap(db.Delete(&a).Error, "delete answer")
}

// MarkAnswerUseful is restricted to the course instructor and the question's author.
func MarkAnswerUseful(db *gorm.DB, user models.User, path LessonPath, questionID, answerID uint, useful bool) (*community.ForumAnswer, error) {
	scope, err := resolveForumScope(db, user, path)
	if err != nil {
		return nil, err
	}
	q, err := loadQuestion(db, path.LessonID, questionID)
	if err != nil {
		return nil, err
	}
	if !scope.course.IsOwnedBy(user.ID) && q.AuthorID != user.ID {
		return nil, apperr.Forbidden("Only the course instructor or the question author can mark answers as useful!")
	}
	a, err := loadAnswer(db, questionID, answerID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&a).Update("useful", useful).Error; err != nil {
		return nil, errors.Wrap(err, "update answer useful flag")
	}
	a.Useful = useful
	return &a, nil
}

package services

import (
	"encoding/json"
	"strconv"

	"cursapp/apperr"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OptionInput struct {
	Text      string
	IsCorrect bool
}

type QuestionInput struct {
	Text    string
	Points  int
	Options []OptionInput
}

type QuizInput struct {
	PassingScore int
	MaxAttempts  int
	Questions    []QuestionInput
}

type QuizAttemptResult struct {
	Attempt      evaluation.QuizAttempt `json:"attempt"`
	FirstPass    bool                   `json:"first_pass"`
	AttemptsLeft int                    `json:"attempts_left"`
	LessonResult *ProgressResult        `json:"lesson_progress,omitempty"`
}

// UpsertQuiz replaces the quiz of a quiz lesson, including all questions and options.
func UpsertQuiz(db *gorm.DB, lesson course.Lesson, in QuizInput) (*course.Quiz, error) {
	if lesson.Type != course.LessonQuiz {
		return nil, apperr.Validation("Only quiz lessons can hold a quiz!")
	}
	var quiz course.Quiz
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("lesson_id = ?", lesson.ID).First(&quiz).Error
		switch {
		case err == nil:
			var questionIDs []uint
			if err := tx.Model(&course.Question{}).Where("quiz_id = ?", quiz.ID).Pluck("id", &questionIDs).Error; err != nil {
				return errors.Wrap(err, "load quiz questions")
			}
			if len(questionIDs) > 0 {
				if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&course.Option{}).Error; err != nil {
					return errors.Wrap(err, "delete options")
				}
				if err := tx.Unscoped().Where("quiz_id = ?", quiz.ID).Delete(&course.Question{}).Error; err != nil {
					return errors.Wrap(err, "delete questions")
				}
			}
			quiz.PassingScore = in.PassingScore
			quiz.MaxAttempts = in.MaxAttempts
			if err := tx.Save(&quiz).Error; err != nil {
				return errors.Wrap(err, "update quiz")
			}
		case isNotFound(err):
			quiz = course.Quiz{LessonID: lesson.ID, PassingScore: in.PassingScore, MaxAttempts: in.MaxAttempts}
			if err := tx.Create(&quiz).Error; err != nil {
				return errors.Wrap(err, "create quiz")
			}
		default:
			return errors.Wrap(err, "load quiz")
		}

		quiz.Questions = make([]course.Question, 0, len(in.Questions))
		for i, qin := range in.Questions {
			points := qin.Points
			if points <= 0 {
				points = 1
			}
			q := course.Question{QuizID: quiz.ID, Text: qin.Text, Points: points, Order: i + 1}
			for _, oin := range qin.Options {
				q.Options = append(q.Options, course.Option{Text: oin.Text, IsCorrect: oin.IsCorrect})
			}
			if err := tx.Create(&q).Error; err != nil {
				return errors.Wrap(err, "create question")
			}
			quiz.Questions = append(quiz.Questions, q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func loadQuiz(tx *gorm.DB, lessonID uint) (course.Quiz, error) {
	var quiz course.Quiz
	err := tx.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC").Order("id ASC")
	}).Preload("Questions.Options").
		Where("lesson_id = ?", lessonID).First(&quiz).Error
	if err != nil {
		if isNotFound(err) {
			return quiz, apperr.NotFound("Quiz not found!")
		}
		return quiz, errors.Wrap(err, "load quiz")
	}
	return quiz, nil
}

// QuizForStudent returns the quiz of a lesson the student may take.
func QuizForStudent(db *gorm.DB, studentID, lessonID uint) (*course.Quiz, error) {
	access, err := authorizeLesson(db, studentID, lessonID, false)
	if err != nil {
		return nil, err
	}
	if access.lesson.Type != course.LessonQuiz {
		return nil, apperr.Validation("This lesson is not a quiz!")
	}
	quiz, err := loadQuiz(db, lessonID)
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ScoreQuiz returns the points earned for answers (question id → option id) and the maximum.
func ScoreQuiz(quiz course.Quiz, answers map[uint]uint) (score, maxScore int) {
	for _, q := range quiz.Questions {
		maxScore += q.Points
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == chosen && o.IsCorrect {
				score += q.Points
				break
			}
		}
	}
	return score, maxScore
}

// SubmitQuizAttempt scores an attempt. The first passing attempt awards the quiz XP and
// completes the lesson.
func SubmitQuizAttempt(db *gorm.DB, studentID, lessonID uint, answers map[uint]uint) (*QuizAttemptResult, error) {
	var result QuizAttemptResult
	err := db.Transaction(func(tx *gorm.DB) error {
		access, err := authorizeLesson(tx, studentID, lessonID, false)
		if err != nil {
			return err
		}
		if access.lesson.Type != course.LessonQuiz {
			return apperr.Validation("This lesson is not a quiz!")
		}
		quiz, err := loadQuiz(tx, lessonID)
		if err != nil {
			return err
		}

		var attempts, passes int64
		if err := tx.Model(&evaluation.QuizAttempt{}).
			Where("enrollment_id = ? AND quiz_id = ?", access.enrollment.ID, quiz.ID).
			Count(&attempts).Error; err != nil {
			return errors.Wrap(err, "count attempts")
		}
		if int(attempts) >= quiz.MaxAttempts {
			return apperr.Validation("Maximum number of attempts reached!")
		}
		if err := tx.Model(&evaluation.QuizAttempt{}).
			Where("enrollment_id = ? AND quiz_id = ? AND passed = ?", access.enrollment.ID, quiz.ID, true).
			Count(&passes).Error; err != nil {
			return errors.Wrap(err, "count passing attempts")
		}

		score, maxScore := ScoreQuiz(quiz, answers)
		passed := maxScore > 0 && score*100 >= quiz.PassingScore*maxScore

		stored := make(map[string]uint, len(answers))
		for q, o := range answers {
			stored[strconv.FormatUint(uint64(q), 10)] = o
		}
		raw, err := json.Marshal(stored)
		if err != nil {
			return errors.Wrap(err, "marshal answers")
		}

		attempt := evaluation.QuizAttempt{
			EnrollmentID:  access.enrollment.ID,
			QuizID:        quiz.ID,
			Answers:       datatypes.JSON(raw),
			Score:         score,
			MaxScore:      maxScore,
			Passed:        passed,
			AttemptNumber: int(attempts) + 1,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return errors.Wrap(err, "create attempt")
		}
		result.Attempt = attempt
		result.AttemptsLeft = quiz.MaxAttempts - attempt.AttemptNumber

		if passed && passes == 0 {
			result.FirstPass = true
			if err := AwardQuizPass(tx, studentID); err != nil {
				return err
			}
			lessonResult, err := writeProgress(tx, studentID, access, func(p *evaluation.LessonProgress) bool {
				p.PercentViewed = 100
				return true
			})
			if err != nil {
				return err
			}
			result.LessonResult = lessonResult
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

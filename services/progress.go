package services

import (
	"time"

	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InterestThreshold is the percent viewed from which a lesson counts as interesting.
const InterestThreshold = 50

var validLessonStatuses = map[string]bool{
	evaluation.SCORMPassed:       true,
	evaluation.SCORMCompleted:    true,
	evaluation.SCORMFailed:       true,
	evaluation.SCORMIncomplete:   true,
	evaluation.SCORMBrowsed:      true,
	evaluation.SCORMNotAttempted: true,
}

type ProgressUpdate struct {
	MinutesSpent  int
	PercentViewed *int
	Completed     bool
}

type SCORMCommit struct {
	LessonStatus   string
	ScoreRaw       *float64
	SuspendData    *string
	PercentViewed  *int
	SessionMinutes int
}

type ProgressResult struct {
	Progress        evaluation.LessonProgress `json:"progress"`
	JustCompleted   bool                      `json:"just_completed"`
	CourseCompleted bool                      `json:"course_completed"`
	Certificate     *evaluation.Certificate   `json:"certificate,omitempty"`
}

type lessonAccess struct {
	lesson     course.Lesson
	enrollment evaluation.Enrollment
}

// authorizeLesson enforces the progress gate: caller is a student holding a paid
// enrollment for the lesson's course.
func authorizeLesson(tx *gorm.DB, studentID, lessonID uint, requireSCORM bool) (lessonAccess, error) {
	var access lessonAccess
	user, err := loadUser(tx, studentID)
	if err != nil {
		return access, err
	}
	if user.Role != models.RoleStudent {
		return access, apperr.Forbidden("Only students can track lesson progress!")
	}

	if err := tx.First(&access.lesson, lessonID).Error; err != nil {
		if isNotFound(err) {
			return access, apperr.NotFound("Lesson not found!")
		}
		return access, errors.Wrap(err, "load lesson")
	}
	if requireSCORM && access.lesson.Type != course.LessonSCORM {
		return access, apperr.Forbidden("This lesson is not a SCORM package!")
	}

	enrollment, ok, err := paidEnrollment(tx, studentID, access.lesson.CourseID)
	if err != nil {
		return access, err
	}
	if !ok {
		return access, apperr.Forbidden("You need a paid enrollment to access this lesson!")
	}
	access.enrollment = enrollment
	return access, nil
}

func getOrCreateProgress(tx *gorm.DB, enrollmentID, lessonID uint) (evaluation.LessonProgress, bool, error) {
	var p evaluation.LessonProgress
	err := tx.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).First(&p).Error
	if err == nil {
		return p, false, nil
	}
	if !isNotFound(err) {
		return p, false, errors.Wrap(err, "load lesson progress")
	}

	p = evaluation.LessonProgress{
		EnrollmentID: enrollmentID,
		LessonID:     lessonID,
		LessonStatus: evaluation.SCORMNotAttempted,
		Entry:        evaluation.EntryAbInitio,
	}
	if err := tx.Create(&p).Error; err != nil {
		return p, false, errors.Wrap(err, "create lesson progress")
	}
	return p, true, nil
}

// InitializeSCORM implements LMSInitialize: the first access starts ab-initio, every later
// access resumes.
func InitializeSCORM(db *gorm.DB, studentID, lessonID uint) (*evaluation.LessonProgress, error) {
	var progress evaluation.LessonProgress
	err := db.Transaction(func(tx *gorm.DB) error {
		access, err := authorizeLesson(tx, studentID, lessonID, true)
		if err != nil {
			return err
		}
		p, created, err := getOrCreateProgress(tx, access.enrollment.ID, lessonID)
		if err != nil {
			return err
		}
		if !created && p.Entry != evaluation.EntryResume {
			if err := tx.Model(&p).Update("entry", evaluation.EntryResume).Error; err != nil {
				return errors.Wrap(err, "mark progress resume")
			}
			p.Entry = evaluation.EntryResume
		}
		if err := touchInteraction(tx, studentID, lessonID, p.Completed || p.PercentViewed >= InterestThreshold); err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CommitSCORM implements LMSCommit.
func CommitSCORM(db *gorm.DB, studentID, lessonID uint, in SCORMCommit) (*ProgressResult, error) {
	if in.LessonStatus != "" && !validLessonStatuses[in.LessonStatus] {
		return nil, apperr.Validation("Invalid lesson_status!")
	}
	var result *ProgressResult
	err := db.Transaction(func(tx *gorm.DB) error {
		access, err := authorizeLesson(tx, studentID, lessonID, true)
		if err != nil {
			return err
		}
		result, err = writeProgress(tx, studentID, access, func(p *evaluation.LessonProgress) bool {
			if in.LessonStatus != "" {
				p.LessonStatus = in.LessonStatus
			}
			if in.ScoreRaw != nil {
				p.ScoreRaw = in.ScoreRaw
			}
			if in.SuspendData != nil {
				p.SuspendData = *in.SuspendData
			}
			if in.PercentViewed != nil {
				p.PercentViewed = clampPercent(*in.PercentViewed)
			}
			if in.SessionMinutes > 0 {
				p.MinutesSpent += in.SessionMinutes
			}
			return p.LessonStatus == evaluation.SCORMPassed || p.LessonStatus == evaluation.SCORMCompleted
		})
		return err
	})
	return result, err
}

// RecordProgress updates time spent, percent viewed and completion for a lesson.
func RecordProgress(db *gorm.DB, studentID, lessonID uint, in ProgressUpdate) (*ProgressResult, error) {
	var result *ProgressResult
	err := db.Transaction(func(tx *gorm.DB) error {
		access, err := authorizeLesson(tx, studentID, lessonID, false)
		if err != nil {
			return err
		}
		if in.Completed && access.lesson.Type == course.LessonQuiz {
			return apperr.Validation("Quiz lessons are completed by passing the quiz!")
		}
		result, err = writeProgress(tx, studentID, access, func(p *evaluation.LessonProgress) bool {
			if in.MinutesSpent > 0 {
				p.MinutesSpent += in.MinutesSpent
			}
			if in.PercentViewed != nil {
				p.PercentViewed = clampPercent(*in.PercentViewed)
			}
			return in.Completed
		})
		return err
	})
	return result, err
}

// writeProgress applies mutate to the progress row and handles the completion transition.
// The false to true flip is a guarded update so the completion XP is awarded once.
func writeProgress(tx *gorm.DB, studentID uint, access lessonAccess, mutate func(p *evaluation.LessonProgress) bool) (*ProgressResult, error) {
	p, _, err := getOrCreateProgress(tx, access.enrollment.ID, access.lesson.ID)
	if err != nil {
		return nil, err
	}
	wasCompleted := p.Completed
	complete := mutate(&p)
	p.Completed = wasCompleted

	if err := tx.Save(&p).Error; err != nil {
		return nil, errors.Wrap(err, "save lesson progress")
	}

	result := &ProgressResult{}
	if complete && !wasCompleted {
		now := time.Now()
		res := tx.Model(&evaluation.LessonProgress{}).
			Where("id = ? AND completed = ?", p.ID, false).
			Updates(map[string]interface{}{"completed": true, "completed_at": now})
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "complete lesson progress")
		}
		if res.RowsAffected == 1 {
			p.Completed = true
			p.CompletedAt = &now
			result.JustCompleted = true
			if err := AwardLessonCompletion(tx, studentID); err != nil {
				return nil, err
			}
		}
	}

	if err := touchInteraction(tx, studentID, access.lesson.ID, p.Completed || p.PercentViewed >= InterestThreshold); err != nil {
		return nil, err
	}

	if result.JustCompleted {
		courseDone, cert, err := refreshEnrollmentProgress(tx, access.enrollment)
		if err != nil {
			return nil, err
		}
		result.CourseCompleted = courseDone
		result.Certificate = cert
	}
	result.Progress = p
	return result, nil
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// touchInteraction records that the student saw the lesson. Interest never drops back to 0.
func touchInteraction(tx *gorm.DB, studentID, lessonID uint, interested bool) error {
	now := time.Now()
	var it evaluation.LessonInteraction
	err := tx.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).First(&it).Error
	if err != nil && !isNotFound(err) {
		return errors.Wrap(err, "load interaction")
	}
	if isNotFound(err) {
		it = evaluation.LessonInteraction{StudentID: studentID, LessonID: lessonID, LastSeenAt: now}
		if interested {
			it.Interest = 1
		}
		return errors.Wrap(tx.Create(&it).Error, "create interaction")
	}

	updates := map[string]interface{}{"last_seen_at": now}
	if interested {
		updates["interest"] = 1
	}
	return errors.Wrap(tx.Model(&it).Updates(updates).Error, "update interaction")
}

// refreshEnrollmentProgress recomputes the completed-lesson ratio of the enrollment and
// issues the certificate on the transition to course completion.
func refreshEnrollmentProgress(tx *gorm.DB, enrollment evaluation.Enrollment) (bool, *evaluation.Certificate, error) {
	var total, done int64
	if err := tx.Model(&course.Lesson{}).Where("course_id = ?", enrollment.CourseID).Count(&total).Error; err != nil {
		return false, nil, errors.Wrap(err, "count lessons")
	}
	if err := tx.Model(&evaluation.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_progresses.enrollment_id = ? AND lesson_progresses.completed = ?", enrollment.ID, true).
		Count(&done).Error; err != nil {
		return false, nil, errors.Wrap(err, "count completed lessons")
	}

	percent := decimal.Zero
	if total > 0 {
		percent = decimal.NewFromInt(done * 100).Div(decimal.NewFromInt(total)).Round(2)
	}
	courseDone := total > 0 && done >= total

	updates := map[string]interface{}{"progress_percent": percent}
	if courseDone {
		updates["completed"] = true
	}
	if err := tx.Model(&evaluation.Enrollment{}).Where("id = ?", enrollment.ID).Updates(updates).Error; err != nil {
		return false, nil, errors.Wrap(err, "update enrollment progress")
	}

	if !courseDone || enrollment.Completed {
		return courseDone, nil, nil
	}

	var c course.Course
	if err := tx.Unscoped().First(&c, enrollment.CourseID).Error; err != nil {
		return true, nil, errors.Wrap(err, "load course")
	}
	if !c.RequiresCertificate {
		return true, nil, nil
	}
	cert, err := IssueCertificate(tx, enrollment.StudentID, enrollment.CourseID)
	return true, cert, err
}

// IssueCertificate returns the student's certificate for the course, creating it once.
func IssueCertificate(tx *gorm.DB, studentID, courseID uint) (*evaluation.Certificate, error) {
	var cert evaluation.Certificate
	err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&cert).Error
	if err == nil {
		return &cert, nil
	}
	if !isNotFound(err) {
		return nil, errors.Wrap(err, "load certificate")
	}
	cert = evaluation.Certificate{
		StudentID: studentID,
		CourseID:  courseID,
		Code:      uuid.NewString(),
		IssuedAt:  time.Now(),
	}
	if err := tx.Create(&cert).Error; err != nil {
		return nil, errors.Wrap(err, "create certificate")
	}
	return &cert, nil
}

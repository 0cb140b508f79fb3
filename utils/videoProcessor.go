package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cursapp/logger"
	"cursapp/models/course"
	"cursapp/queue"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const hlsSuffix = ".m3u8"

var videoQueue queue.Queue

// InitVideoQueue sets the queue used by EnqueueVideoProcessing.
func InitVideoQueue(q queue.Queue) {
	videoQueue = q
}

// EnqueueVideoProcessing schedules the transcoding of a video lesson. It never fails the
// caller; a lost task leaves the lesson pending.
func EnqueueVideoProcessing(ctx context.Context, lessonID uint) {
	if videoQueue == nil {
		logger.L().Warn("video queue not configured, lesson stays pending", "lesson_id", lessonID)
		return
	}
	task := queue.NewTask(queue.KindProcessVideo, lessonID)
	if err := videoQueue.Enqueue(ctx, task); err != nil {
		logger.L().Error("enqueue video processing failed", "lesson_id", lessonID, "error", err)
		return
	}
	logger.L().Info("video processing enqueued", "lesson_id", lessonID, "task_id", task.ID)
}

// StartVideoWorker consumes video tasks until ctx is cancelled.
func StartVideoWorker(ctx context.Context, db *gorm.DB, q queue.Queue, delay time.Duration) {
	go func() {
		logger.L().Info("[VIDEO-WORKER] started")
		for {
			task, err := q.Dequeue(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.L().Info("[VIDEO-WORKER] stopped")
					return
				}
				logger.L().Error("[VIDEO-WORKER] dequeue failed", "error", err)
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}
			runVideoTask(ctx, db, task, delay)
		}
	}()
}

func runVideoTask(ctx context.Context, db *gorm.DB, task queue.Task, delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("[VIDEO-WORKER] task panicked", "task_id", task.ID, "lesson_id", task.LessonID, "panic", fmt.Sprint(r))
		}
	}()
	if task.Kind != queue.KindProcessVideo {
		logger.L().Warn("[VIDEO-WORKER] unknown task kind", "kind", task.Kind, "task_id", task.ID)
		return
	}
	if err := ProcessVideoLesson(ctx, db, task.LessonID, delay); err != nil {
		logger.L().Error("[VIDEO-WORKER] processing failed", "lesson_id", task.LessonID, "error", err)
	}
}

// ProcessVideoLesson simulates transcoding: processing, wait, then the HLS manifest URL and
// completed. Any failure after the lesson was found marks it as error.
func ProcessVideoLesson(ctx context.Context, db *gorm.DB, lessonID uint, delay time.Duration) error {
	var lesson course.Lesson
	if err := db.WithContext(ctx).First(&lesson, lessonID).Error; err != nil {
		return errors.Wrapf(err, "load lesson %d", lessonID)
	}

	if err := setProcessingStatus(db, lessonID, course.ProcessingInProgress); err != nil {
		return err
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			markProcessingError(db, lessonID)
			return ctx.Err()
		}
	}

	// the lesson may have been edited while we waited
	if err := db.First(&lesson, lessonID).Error; err != nil {
		markProcessingError(db, lessonID)
		return errors.Wrapf(err, "reload lesson %d", lessonID)
	}
	fileURL := lesson.FileURL
	if !strings.HasSuffix(fileURL, hlsSuffix) {
		fileURL += hlsSuffix
	}
	err := db.Model(&course.Lesson{}).Where("id = ?", lessonID).Updates(map[string]interface{}{
		"file_url":          fileURL,
		"processing_status": course.ProcessingCompleted,
	}).Error
	if err != nil {
		markProcessingError(db, lessonID)
		return errors.Wrap(err, "complete lesson processing")
	}
	logger.L().Info("[VIDEO-WORKER] lesson processed", "lesson_id", lessonID, "file_url", fileURL)
	return nil
}

func setProcessingStatus(db *gorm.DB, lessonID uint, status course.ProcessingStatus) error {
	err := db.Model(&course.Lesson{}).Where("id = ?", lessonID).Update("processing_status", status).Error
	return errors.Wrap(err, "update processing status")
}

func markProcessingError(db *gorm.DB, lessonID uint) {
	if err := setProcessingStatus(db, lessonID, course.ProcessingError); err != nil {
		logger.L().Error("[VIDEO-WORKER] marking lesson as error failed", "lesson_id", lessonID, "error", err)
	}
}

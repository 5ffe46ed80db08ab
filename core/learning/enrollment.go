package learning

import (
	"fmt"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/notification"
)

// user-facing messages
const (
	msgEnrollUserNotFound = "User not found. Please try logging in again."
	msgEnrollNotStudent   = "Only students can enroll in courses."
	msgEnrollNoCourse     = "Course not found."
	msgEnrollDuplicate    = "You are already enrolled in this course."
	msgEnrollPending      = "This course is pending approval and cannot be enrolled yet."
	msgEnrolled           = "Successfully enrolled!"
)

func enrollmentOf(userID, courseID string) func(Enrollment) bool {
	return func(e Enrollment) bool { return e.UserID == userID && e.CourseID == courseID }
}

func completionKey(userID, courseID string, lessonIndex int) string {
	return fmt.Sprintf("%s-%s-%d", userID, courseID, lessonIndex)
}

// completionOf matches on the fields, the key alone is ambiguous when ids contain dashes.
func completionOf(userID, courseID string, lessonIndex int) func(LessonCompletion) bool {
	return func(l LessonCompletion) bool {
		return l.UserID == userID && l.CourseID == courseID && l.LessonIndex == lessonIndex
	}
}

// Enroll enrolls a student in an approved course with a progress of 0.
func (svc *Service) Enroll(userID, courseID string, payment PaymentStatus) core.Result {
	usr, err := svc.users.GetByID(userID)
	if err != nil {
		svc.logger.Warn("learning.Enroll: user not found", map[string]interface{}{"userId": userID})
		return core.Fail(msgEnrollUserNotFound)
	}
	if !usr.IsStudent() {
		return core.Fail(msgEnrollNotStudent)
	}
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return core.Fail(msgEnrollNoCourse)
	}
	if _, ok := svc.repos.Enrollments.Find(enrollmentOf(userID, courseID)); ok {
		return core.Fail(msgEnrollDuplicate)
	}
	if !course.Status.Enrollable() {
		return core.Fail(msgEnrollPending)
	}
	if payment == "" {
		payment = PaymentPaid
	}

	var created bool
	svc.repos.Enrollments.Mutate(func(rows []Enrollment) []Enrollment {
		// re-check at write time
		for _, e := range rows {
			if e.UserID == userID && e.CourseID == courseID {
				return rows
			}
		}
		created = true
		return append(rows, Enrollment{
			ID:            core.NewID("enroll-"),
			UserID:        userID,
			CourseID:      courseID,
			PaymentStatus: payment,
			EnrolledAt:    core.Now(),
		})
	})
	if !created {
		return core.Fail(msgEnrollDuplicate)
	}

	svc.notifier.Add(
		userID,
		"New Course Enrollment",
		fmt.Sprintf("You have successfully enrolled in %s!", course.Title),
		notification.TypeSuccess,
		nil,
	)
	return core.Ok(msgEnrolled)
}

// UpdateProgress sets the enrollment progress as is; callers pass values in 0..100.
func (svc *Service) UpdateProgress(userID, courseID string, progress int) {
	svc.repos.Enrollments.Update(enrollmentOf(userID, courseID), func(e *Enrollment) { e.Progress = progress })
}

// CompleteLesson records the lesson as completed (once) and recomputes the enrollment progress.
func (svc *Service) CompleteLesson(userID, courseID string, lessonIndex int) {
	match := completionOf(userID, courseID, lessonIndex)

	var inserted bool
	svc.repos.Completions.Mutate(func(rows []LessonCompletion) []LessonCompletion {
		for _, l := range rows {
			if match(l) {
				return rows
			}
		}
		inserted = true
		return append(rows, LessonCompletion{
			Key:         completionKey(userID, courseID, lessonIndex),
			UserID:      userID,
			CourseID:    courseID,
			LessonIndex: lessonIndex,
			CompletedAt: core.Now(),
		})
	})
	if !inserted {
		return
	}

	course, err := svc.GetCourse(courseID)
	if err != nil {
		return
	}
	total := len(course.Lessons)
	if total == 0 {
		total = 1
	}
	completed := svc.repos.Completions.Count(func(l LessonCompletion) bool {
		return l.UserID == userID && l.CourseID == courseID
	})
	svc.UpdateProgress(userID, courseID, percentage(float64(completed), float64(total)))
}

func (svc *Service) IsLessonCompleted(userID, courseID string, lessonIndex int) bool {
	_, ok := svc.repos.Completions.Find(completionOf(userID, courseID, lessonIndex))
	return ok
}

func (svc *Service) GetEnrollment(userID, courseID string) (Enrollment, bool) {
	return svc.repos.Enrollments.Find(enrollmentOf(userID, courseID))
}

func (svc *Service) EnrollmentsForUser(userID string) []Enrollment {
	return svc.repos.Enrollments.Filter(func(e Enrollment) bool { return e.UserID == userID })
}

func (svc *Service) EnrollmentsForCourse(courseID string) []Enrollment {
	return svc.repos.Enrollments.Filter(byCourse[Enrollment](courseID))
}

// Package learning owns the course catalog and everything a learner does with it:
// enrollment, lesson tracking, quizzes, assignments, reviews and certificates.
package learning

import (
	"errors"
	"fmt"
	"math"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/notification"
	"github.com/hatag-tech/elearning/core/user"
)

var (
	// errors
	ErrNotFound            = errors.New("not found")
	ErrCourseNotFound      = fmt.Errorf("course %w", ErrNotFound)
	ErrQuizNotFound        = fmt.Errorf("quiz %w", ErrNotFound)
	ErrAssignmentNotFound  = fmt.Errorf("assignment %w", ErrNotFound)
	ErrSubmissionNotFound  = fmt.Errorf("submission %w", ErrNotFound)
	ErrLessonNotFound      = fmt.Errorf("lesson %w", ErrNotFound)
	ErrCertificateNotFound = fmt.Errorf("certificate %w", ErrNotFound)
	ErrNotEligible         = errors.New("not eligible for a certificate")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrInvalidGrade        = errors.New("grade is out of range")
	ErrInvalidAnswer       = errors.New("correct answer must reference one of the options")
)

type (
	// Repositories groups the persisted collections owned by the learning service.
	Repositories struct {
		Courses      core.Collection[Course]
		Categories   core.Collection[Category]
		Approvals    core.Collection[Course]
		Enrollments  core.Collection[Enrollment]
		Completions  core.Collection[LessonCompletion]
		QuizAttempts core.Collection[QuizAttempt]
		Quizzes      core.Collection[Quiz]
		Assignments  core.Collection[Assignment]
		Submissions  core.Collection[Submission]
		Certificates core.Collection[Certificate]
		Reviews      core.Collection[Review]
	}

	// UserFinder is the read side of the identity store.
	UserFinder interface {
		GetByID(id string) (user.User, error)
		FindMasterAdmin() (user.User, error)
		QueryAll() []user.User
	}

	Notifier interface {
		Add(userID, title, message string, typ notification.Type, data map[string]interface{}) notification.Notification
	}

	Service struct {
		repos     Repositories
		users     UserFinder
		notifier  Notifier
		validator *core.Validator
		rules     core.CertificateRules
		pageSize  int
		logger    core.Logger
	}
)

func NewService(repos Repositories, users UserFinder, notifier Notifier, validator *core.Validator, conf *core.Config, logger core.Logger) *Service {
	pageSize := conf.CatalogPageSize
	if pageSize <= 0 {
		pageSize = 6
	}
	return &Service{
		repos:     repos,
		users:     users,
		notifier:  notifier,
		validator: validator,
		rules:     conf.Certificate,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// percentage returns round(part/total*100), 0 when total is 0.
func percentage(part, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(part / total * 100))
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Package inmemdb keeps every collection in memory and mirrors each one, under its own key,
// to a kv.Store.
package inmemdb

import (
	"context"
	"time"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/learning"
	"github.com/hatag-tech/elearning/core/notification"
	"github.com/hatag-tech/elearning/core/user"
	"github.com/hatag-tech/elearning/storage/kv"
)

// Persistence keys
const (
	KeyUsers         = "users"
	KeySession       = "user"
	KeyCourses       = "courses"
	KeyCategories    = "categories"
	KeyEnrollments   = "enrollments"
	KeyApprovals     = "approvals"
	KeyCompletions   = "lessonCompletions"
	KeyQuizAttempts  = "quizAttempts"
	KeyAssignments   = "assignments"
	KeySubmissions   = "assignmentSubmissions"
	KeyQuizzes       = "instructorQuizzes"
	KeyCertificates  = "certificates"
	KeyReviews       = "courseReviews"
	KeyNotifications = "notifications"
)

const defaultWriteTimeout = 3 * time.Second

type (
	Options struct {
		// WriteTimeout bounds every mirror write.
		WriteTimeout time.Duration
		// Admin seeds the master administrator account.
		Admin core.AdminCredential
	}

	DB struct {
		store        kv.Store
		logger       core.Logger
		writeTimeout time.Duration

		users   *Table[user.User]
		session *Record[user.User]

		courses       *Table[learning.Course]
		categories    *Table[learning.Category]
		approvals     *Table[learning.Course]
		enrollments   *Table[learning.Enrollment]
		completions   *Table[learning.LessonCompletion]
		quizAttempts  *Table[learning.QuizAttempt]
		quizzes       *Table[learning.Quiz]
		assignments   *Table[learning.Assignment]
		submissions   *Table[learning.Submission]
		certificates  *Table[learning.Certificate]
		reviews       *Table[learning.Review]
		notifications *Table[notification.Notification]
	}
)

// Open loads every collection independently from store. A missing or corrupt key falls back to
// its default: the seed for users, courses and categories, empty otherwise.
// Seed courses missing from the persisted catalog are merged back.
func Open(ctx context.Context, store kv.Store, logger core.Logger, opts Options) (*DB, error) {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	sd, err := loadSeed(opts.Admin)
	if err != nil {
		return nil, err
	}

	db := &DB{store: store, logger: logger, writeTimeout: opts.WriteTimeout}
	db.users = newTable(db, KeyUsers, user.User.Persistable)
	db.session = newRecord(db, KeySession, user.User.Persistable)
	db.courses = newTable(db, KeyCourses, learning.Course.Persistable)
	db.categories = newTable[learning.Category](db, KeyCategories, nil)
	db.approvals = newTable(db, KeyApprovals, learning.Course.Persistable)
	db.enrollments = newTable[learning.Enrollment](db, KeyEnrollments, nil)
	db.completions = newTable[learning.LessonCompletion](db, KeyCompletions, nil)
	db.quizAttempts = newTable[learning.QuizAttempt](db, KeyQuizAttempts, nil)
	db.quizzes = newTable[learning.Quiz](db, KeyQuizzes, nil)
	db.assignments = newTable[learning.Assignment](db, KeyAssignments, nil)
	db.submissions = newTable(db, KeySubmissions, learning.Submission.Persistable)
	db.certificates = newTable[learning.Certificate](db, KeyCertificates, nil)
	db.reviews = newTable[learning.Review](db, KeyReviews, nil)
	db.notifications = newTable[notification.Notification](db, KeyNotifications, nil)

	db.users.load(ctx, nil)
	if len(db.users.rows) == 0 {
		db.users.rows = sd.users
		db.users.persist()
	}
	db.session.load(ctx)

	db.courses.load(ctx, nil)
	if mergeMissing(db.courses, sd.courses) > 0 {
		db.courses.persist()
	}
	if !db.categories.load(ctx, sd.categories) {
		db.categories.persist()
	}

	db.approvals.load(ctx, nil)
	db.enrollments.load(ctx, nil)
	db.completions.load(ctx, nil)
	db.quizAttempts.load(ctx, nil)
	db.quizzes.load(ctx, nil)
	db.assignments.load(ctx, nil)
	db.submissions.load(ctx, nil)
	db.certificates.load(ctx, nil)
	db.reviews.load(ctx, nil)
	db.notifications.load(ctx, nil)

	logger.Debug("inmemdb: opened", map[string]interface{}{
		"users":   len(db.users.rows),
		"courses": len(db.courses.rows),
	})
	return db, nil
}

// mergeMissing appends the seed courses whose id is absent from tbl and returns how many were added.
// An empty table receives the whole seed.
func mergeMissing(tbl *Table[learning.Course], seeds []learning.Course) int {
	ids := make(map[string]bool, len(tbl.rows))
	for _, c := range tbl.rows {
		ids[c.ID] = true
	}
	var n int
	for _, c := range seeds {
		if !ids[c.ID] {
			tbl.rows = append(tbl.rows, c)
			n++
		}
	}
	return n
}

func (db *DB) Close() error {
	return db.store.Close()
}

// Session returns the persisted active session.
func (db *DB) Session() user.SessionStore {
	return db.session
}

func (db *DB) Notifications() core.Collection[notification.Notification] {
	return db.notifications
}

func (db *DB) LearningRepositories() learning.Repositories {
	return learning.Repositories{
		Courses:      db.courses,
		Categories:   db.categories,
		Approvals:    db.approvals,
		Enrollments:  db.enrollments,
		Completions:  db.completions,
		QuizAttempts: db.quizAttempts,
		Quizzes:      db.quizzes,
		Assignments:  db.assignments,
		Submissions:  db.submissions,
		Certificates: db.certificates,
		Reviews:      db.reviews,
	}
}

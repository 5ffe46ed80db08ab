package learning_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/learning"
	"github.com/hatag-tech/elearning/core/notification"
	"github.com/hatag-tech/elearning/tests"
)

const (
	student    = "u-student"
	instructor = "u-instructor"
	courseAI   = "course-ai"
)

func intPtr(i int) *int { return &i }

func lessons(n int) []learning.Lesson {
	ls := make([]learning.Lesson, n)
	for i := range ls {
		ls[i] = learning.Lesson{Title: "Lesson", Duration: "10:00"}
	}
	return ls
}

func questions() []learning.Question {
	return []learning.Question{
		{Question: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: 1},
		{Question: "Go keyword for concurrency?", Options: []string{"go", "async", "spawn"}, CorrectAnswer: 0, Explanation: "goroutines"},
		{Question: "Zero value of a map?", Options: []string{"{}", "nil"}, CorrectAnswer: 1},
	}
}

func titles(notifs []notification.Notification) []string {
	ts := make([]string, len(notifs))
	for i, n := range notifs {
		ts[i] = n.Title
	}
	return ts
}

// newEnrolled returns an environment in which the default student is enrolled in courseAI.
func newEnrolled(t *testing.T) *testutil.Env {
	env := testutil.NewEnv(t)
	res := env.Learning.Enroll(student, courseAI, learning.PaymentPaid)
	require.True(t, res.Success, res.Message)
	return env
}

func TestService_Enroll(t *testing.T) {
	env := testutil.NewEnv(t)
	draft, err := env.Learning.AddCourseDraft(learning.NewCourse{Title: "Draft", AuthorID: instructor})
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   string
		courseID string
		success  bool
		message  string
	}{
		{"unknown user", "u-ghost", courseAI, false, "User not found. Please try logging in again."},
		{"not a student", instructor, courseAI, false, "Only students can enroll in courses."},
		{"unknown course", student, "course-ghost", false, "Course not found."},
		{"pending course", student, draft.ID, false, "This course is pending approval and cannot be enrolled yet."},
		{"ok", student, courseAI, true, "Successfully enrolled!"},
		{"twice", student, courseAI, false, "You are already enrolled in this course."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Learning.Enroll(tt.userID, tt.courseID, "")
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}

	enrollments := env.Learning.EnrollmentsForUser(student)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 0, enrollments[0].Progress)
	assert.Equal(t, learning.PaymentPaid, enrollments[0].PaymentStatus)

	notifs := env.Notifications.ForUser(student)
	require.Len(t, notifs, 1)
	assert.Equal(t, "You have successfully enrolled in Advanced AI Prompt Engineering!", notifs[0].Message)
	assert.Equal(t, notification.TypeSuccess, notifs[0].Type)
}

func TestService_CompleteLesson(t *testing.T) {
	env := newEnrolled(t)
	_, err := env.Learning.UpdateCourse(courseAI, learning.CoursePatch{Lessons: lessons(4)})
	require.NoError(t, err)

	progress := func() int {
		e, ok := env.Learning.GetEnrollment(student, courseAI)
		require.True(t, ok)
		return e.Progress
	}

	env.Learning.CompleteLesson(student, courseAI, 0)
	assert.Equal(t, 25, progress())
	env.Learning.CompleteLesson(student, courseAI, 2)
	assert.Equal(t, 50, progress())

	// idempotent
	env.Learning.UpdateProgress(student, courseAI, 10)
	env.Learning.CompleteLesson(student, courseAI, 2)
	assert.Equal(t, 10, progress())

	assert.True(t, env.Learning.IsLessonCompleted(student, courseAI, 0))
	assert.False(t, env.Learning.IsLessonCompleted(student, courseAI, 1))

	env.Learning.CompleteLesson(student, courseAI, 1)
	env.Learning.CompleteLesson(student, courseAI, 3)
	assert.Equal(t, 100, progress())
}

func TestService_CompleteLesson_dashedIDs(t *testing.T) {
	env := testutil.NewEnv(t)

	env.Learning.CompleteLesson("u-a-b", "c", 0)
	assert.True(t, env.Learning.IsLessonCompleted("u-a-b", "c", 0))
	assert.False(t, env.Learning.IsLessonCompleted("u-a", "b-c", 0))

	env.Learning.CompleteLesson("u-a", "b-c", 0)
	assert.True(t, env.Learning.IsLessonCompleted("u-a", "b-c", 0))
}

func TestService_CompleteLesson_noLessons(t *testing.T) {
	env := newEnrolled(t)
	env.Learning.CompleteLesson(student, courseAI, 0)

	e, ok := env.Learning.GetEnrollment(student, courseAI)
	require.True(t, ok)
	assert.Equal(t, 100, e.Progress)
}

func TestService_CheckEligibility(t *testing.T) {
	t.Run("not enrolled", func(t *testing.T) {
		env := testutil.NewEnv(t)
		elig := env.Learning.CheckEligibility(student, courseAI)
		assert.False(t, elig.Eligible)
		assert.Equal(t, learning.ReasonNotEnrolled, elig.Reason)
	})

	t.Run("incomplete", func(t *testing.T) {
		env := newEnrolled(t)
		env.Learning.UpdateProgress(student, courseAI, 99)
		elig := env.Learning.CheckEligibility(student, courseAI)
		assert.Equal(t, learning.ReasonIncomplete, elig.Reason)
		assert.Equal(t, 99, elig.Progress)
	})

	t.Run("no quizzes", func(t *testing.T) {
		env := newEnrolled(t)
		env.Learning.UpdateProgress(student, courseAI, 100)
		assert.True(t, env.Learning.CanGenerateCertificate(student, courseAI))
	})

	t.Run("quiz not attempted", func(t *testing.T) {
		env := newEnrolled(t)
		env.Learning.UpdateProgress(student, courseAI, 100)
		_, err := env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: "Final", Questions: questions()})
		require.NoError(t, err)

		elig := env.Learning.CheckEligibility(student, courseAI)
		assert.Equal(t, learning.ReasonQuizMissing, elig.Reason)
	})

	t.Run("quiz lesson not attempted", func(t *testing.T) {
		env := newEnrolled(t)
		env.Learning.UpdateProgress(student, courseAI, 100)
		_, err := env.Learning.AddLesson(courseAI, learning.Lesson{Title: "Checkpoint", QuizID: "quiz-legacy"})
		require.NoError(t, err)

		assert.Equal(t, learning.ReasonQuizMissing, env.Learning.CheckEligibility(student, courseAI).Reason)
	})

	quizTests := []struct {
		name     string
		score    int
		eligible bool
	}{
		{"quiz average 60", 6, false},
		{"quiz average 70", 7, true},
	}
	for _, tt := range quizTests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnrolled(t)
			env.Learning.UpdateProgress(student, courseAI, 100)
			_, err := env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: "Final", Questions: questions()})
			require.NoError(t, err)
			env.Learning.SaveQuizAttempt(student, courseAI, tt.score, 10, tt.score >= 7)

			elig := env.Learning.CheckEligibility(student, courseAI)
			assert.Equal(t, tt.eligible, elig.Eligible)
			assert.Equal(t, float64(tt.score*10), elig.QuizAverage)
			if !tt.eligible {
				assert.Equal(t, learning.ReasonQuizAverage, elig.Reason)
			}
		})
	}

	t.Run("assignments", func(t *testing.T) {
		env := newEnrolled(t)
		env.Learning.UpdateProgress(student, courseAI, 100)
		assignment, err := env.Learning.AddAssignment(courseAI, learning.NewAssignment{Title: "Essay", MaxScore: 50})
		require.NoError(t, err)

		sub, err := env.Learning.SubmitAssignment(student, assignment.ID, learning.NewSubmission{Content: "My essay"})
		require.NoError(t, err)
		assert.Equal(t, learning.ReasonAssignmentUngraded, env.Learning.CheckEligibility(student, courseAI).Reason)

		require.NoError(t, env.Learning.GradeAssignment(sub.ID, 30, "Needs work"))
		elig := env.Learning.CheckEligibility(student, courseAI)
		assert.Equal(t, learning.ReasonAssignmentAverage, elig.Reason)
		assert.Equal(t, float64(60), elig.AssignmentAverage)

		require.NoError(t, env.Learning.GradeAssignment(sub.ID, 40, "Well done"))
		elig = env.Learning.CheckEligibility(student, courseAI)
		assert.True(t, elig.Eligible)
		assert.Equal(t, float64(80), elig.AssignmentAverage)
	})
}

func TestService_GenerateCertificate(t *testing.T) {
	env := newEnrolled(t)

	_, err := env.Learning.GenerateCertificate(student, courseAI)
	assert.ErrorIs(t, err, learning.ErrNotEligible)

	env.Learning.UpdateProgress(student, courseAI, 100)
	cert, err := env.Learning.GenerateCertificate(student, courseAI)
	require.NoError(t, err)
	assert.Equal(t, "Default Student", cert.StudentName)
	assert.Equal(t, "student@example.com", cert.StudentEmail)
	assert.Equal(t, "Advanced AI Prompt Engineering", cert.CourseTitle)
	assert.Equal(t, "Default Instructor", cert.Instructor)

	again, err := env.Learning.GenerateCertificate(student, courseAI)
	require.NoError(t, err)
	assert.Equal(t, cert, again)
	assert.Len(t, env.Learning.CertificatesForUser(student), 1)

	got, err := env.Learning.GetCertificate(cert.ID)
	require.NoError(t, err)
	assert.Equal(t, cert, got)
	_, err = env.Learning.GetCertificate("cert-ghost")
	assert.ErrorIs(t, err, learning.ErrNotFound)

	var earned int
	for _, n := range env.Notifications.ForUser(student) {
		if n.Title == "New Certificate Earned" {
			earned++
			assert.Equal(t, "Congratulations! You've earned a certificate for Advanced AI Prompt Engineering!", n.Message)
		}
	}
	assert.Equal(t, 1, earned)
}

func TestService_AddOrUpdateReview(t *testing.T) {
	env := testutil.NewEnv(t)
	t0 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)

	t.Run("invalid rating", func(t *testing.T) {
		for _, rating := range []int{0, 6} {
			_, err := env.Learning.AddOrUpdateReview(student, courseAI, rating, "")
			assert.True(t, core.IsValidationError(err))
			assert.True(t, errors.Is(err, learning.ErrInvalidRating))
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := env.Learning.AddOrUpdateReview(student, "course-ghost", 4, "")
		assert.ErrorIs(t, err, learning.ErrCourseNotFound)
	})

	testutil.FreezeTime(t, t0)
	created, err := env.Learning.AddOrUpdateReview(student, courseAI, 4, " Great course ")
	require.NoError(t, err)
	assert.Equal(t, "Great course", created.Comment)
	assert.Equal(t, t0, created.CreatedAt)
	assert.False(t, created.UpdatedAt.Valid)

	testutil.FreezeTime(t, t1)
	updated, err := env.Learning.AddOrUpdateReview(student, courseAI, 2, "Changed my mind")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, t0, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.Valid)
	assert.Equal(t, t1, updated.UpdatedAt.Time)

	_, err = env.Learning.AddOrUpdateReview("u-other", courseAI, 5, "")
	require.NoError(t, err)

	assert.Len(t, env.Learning.ReviewsForCourse(courseAI), 2)
	avg, ok := env.Learning.AverageRating(courseAI)
	assert.True(t, ok)
	assert.Equal(t, 3.5, avg)
	_, ok = env.Learning.AverageRating("course-fs")
	assert.False(t, ok)
}

func TestService_ApproveCourse(t *testing.T) {
	env := testutil.NewEnv(t)

	submit := func(title string) learning.Course {
		course, err := env.Learning.AddCourseDraft(learning.NewCourse{
			Title:      title,
			Instructor: "Default Instructor",
			AuthorID:   instructor,
			Category:   "Development",
			Level:      learning.LevelBeginner,
		})
		require.NoError(t, err)
		assert.Equal(t, learning.StatusPending, course.Status)
		return course
	}
	approved := submit("Go in Practice")
	rejected := submit("Spam")

	assert.Len(t, env.Learning.Approvals(), 2)
	adminNotifs := env.Notifications.ForUser("u-admin")
	require.Len(t, adminNotifs, 2)
	assert.Equal(t, `Default Instructor has submitted "Spam" for approval.`, adminNotifs[0].Message)
	assert.Equal(t, "course_approval", adminNotifs[0].Data["type"])

	require.NoError(t, env.Learning.ApproveCourse(approved.ID, true))
	course, err := env.Learning.GetCourse(approved.ID)
	require.NoError(t, err)
	assert.Equal(t, learning.StatusApproved, course.Status)

	require.NoError(t, env.Learning.ApproveCourse(rejected.ID, false))
	_, err = env.Learning.GetCourse(rejected.ID)
	assert.ErrorIs(t, err, learning.ErrCourseNotFound)
	assert.Empty(t, env.Learning.Approvals())

	assert.Equal(t, []string{"Course Rejected", "Course Approved!"}, titles(env.Notifications.ForUser(instructor)))
	assert.ErrorIs(t, env.Learning.ApproveCourse("course-ghost", true), learning.ErrNotFound)
}

func TestService_ApproveCourse_rejectLive(t *testing.T) {
	env := newEnrolled(t)
	env.Learning.CompleteLesson(student, courseAI, 0)
	_, err := env.Learning.AddOrUpdateReview(student, courseAI, 4, "")
	require.NoError(t, err)
	_, err = env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: "Quiz", Questions: questions()})
	require.NoError(t, err)

	require.NoError(t, env.Learning.ApproveCourse(courseAI, false))

	_, err = env.Learning.GetCourse(courseAI)
	assert.ErrorIs(t, err, learning.ErrCourseNotFound)
	assert.Empty(t, env.Learning.EnrollmentsForCourse(courseAI))
	assert.Empty(t, env.Learning.EnrollmentsForUser(student))
	assert.Empty(t, env.Learning.ReviewsForCourse(courseAI))
	assert.Empty(t, env.Learning.QuizzesForCourse(courseAI))
	assert.False(t, env.Learning.IsLessonCompleted(student, courseAI, 0))
	assert.Equal(t, learning.ReasonNotEnrolled, env.Learning.CheckEligibility(student, courseAI).Reason)
}

func TestService_AddCourseDraft_invalid(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := env.Learning.AddCourseDraft(learning.NewCourse{Title: "  "})
	assert.True(t, core.IsValidationError(err))
	_, err = env.Learning.AddCourseDraft(learning.NewCourse{Title: "Go", Level: "Expert"})
	assert.True(t, core.IsValidationError(err))
	assert.Empty(t, env.Learning.Approvals())
}

func TestService_UpdateCourse_syncsQueue(t *testing.T) {
	env := testutil.NewEnv(t)
	draft, err := env.Learning.AddCourseDraft(learning.NewCourse{Title: "Draft"})
	require.NoError(t, err)

	title := "Final title"
	price := 19.99
	_, err = env.Learning.UpdateCourse(draft.ID, learning.CoursePatch{Title: &title, Price: &price})
	require.NoError(t, err)

	queued := env.Learning.Approvals()
	require.Len(t, queued, 1)
	assert.Equal(t, "Final title", queued[0].Title)
	assert.Equal(t, 19.99, queued[0].Price)
	assert.Equal(t, learning.StatusPending, queued[0].Status)

	_, err = env.Learning.UpdateCourse("course-ghost", learning.CoursePatch{Title: &title})
	assert.ErrorIs(t, err, learning.ErrCourseNotFound)
}

func TestService_lessonsAndResources(t *testing.T) {
	env := testutil.NewEnv(t)

	course, err := env.Learning.AddLesson(courseAI, learning.Lesson{Title: "Intro"})
	require.NoError(t, err)
	course, err = env.Learning.AddLesson(courseAI, learning.Lesson{Title: "Prompts"})
	require.NoError(t, err)
	require.Len(t, course.Lessons, 2)

	course, err = env.Learning.UpdateLesson(courseAI, 1, learning.Lesson{Title: "Advanced prompts"})
	require.NoError(t, err)
	assert.Equal(t, "Advanced prompts", course.Lessons[1].Title)

	_, err = env.Learning.UpdateLesson(courseAI, 5, learning.Lesson{})
	assert.ErrorIs(t, err, learning.ErrLessonNotFound)

	course, err = env.Learning.RemoveLesson(courseAI, 0)
	require.NoError(t, err)
	require.Len(t, course.Lessons, 1)
	assert.Equal(t, "Advanced prompts", course.Lessons[0].Title)

	course, err = env.Learning.AddCourseResource(courseAI, learning.Resource{Name: "slides.pdf", URL: "https://cdn.test.cd/slides.pdf"})
	require.NoError(t, err)
	require.Len(t, course.Resources, 1)
	course, err = env.Learning.RemoveCourseResource(courseAI, 0)
	require.NoError(t, err)
	assert.Empty(t, course.Resources)
	_, err = env.Learning.RemoveCourseResource(courseAI, 0)
	assert.ErrorIs(t, err, learning.ErrNotFound)
}

func TestService_Catalog(t *testing.T) {
	env := testutil.NewEnv(t)
	_, err := env.Learning.AddCourseDraft(learning.NewCourse{Title: "Pending web course", Category: "Development"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter learning.CatalogFilter
		ids    []string
		page   int
		pages  int
		total  int
	}{
		{
			name:   "all",
			filter: learning.CatalogFilter{},
			ids:    []string{"course-ai", "course-fs", "course-dm", "course-cs"},
			page:   1, pages: 1, total: 4,
		},
		{
			name:   "search",
			filter: learning.CatalogFilter{Search: " WEB "},
			ids:    []string{"course-fs"},
			page:   1, pages: 1, total: 1,
		},
		{
			name:   "category",
			filter: learning.CatalogFilter{Category: "Development", Level: "All"},
			ids:    []string{"course-ai", "course-fs"},
			page:   1, pages: 1, total: 2,
		},
		{
			name:   "level",
			filter: learning.CatalogFilter{Category: "All", Level: learning.LevelBeginner},
			ids:    []string{"course-dm", "course-cs"},
			page:   1, pages: 1, total: 2,
		},
		{
			name:   "second page",
			filter: learning.CatalogFilter{Page: 2, PageSize: 3},
			ids:    []string{"course-cs"},
			page:   2, pages: 2, total: 4,
		},
		{
			name:   "page out of range",
			filter: learning.CatalogFilter{Page: 9, PageSize: 3},
			ids:    []string{"course-cs"},
			page:   2, pages: 2, total: 4,
		},
		{
			name:   "no match",
			filter: learning.CatalogFilter{Search: "cooking"},
			ids:    []string{},
			page:   1, pages: 1, total: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Learning.Catalog(tt.filter)
			ids := make([]string, len(res.Courses))
			for i, c := range res.Courses {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.page, res.Page)
			assert.Equal(t, tt.pages, res.Pages)
			assert.Equal(t, tt.total, res.Total)
			assert.Equal(t, []string{"Development", "Marketing", "Data Science"}, res.Categories)
		})
	}
}

func TestService_SubmitQuiz(t *testing.T) {
	env := newEnrolled(t)

	t.Run("invalid", func(t *testing.T) {
		_, err := env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: " "})
		assert.True(t, core.IsValidationError(err))

		bad := questions()
		bad[0].CorrectAnswer = 2
		_, err = env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: "Bad", Questions: bad})
		assert.ErrorIs(t, err, learning.ErrInvalidAnswer)

		_, err = env.Learning.AddQuiz("course-ghost", learning.NewQuiz{Title: "Lost"})
		assert.ErrorIs(t, err, learning.ErrCourseNotFound)

		_, err = env.Learning.SubmitQuiz(student, "quiz-ghost", nil)
		assert.ErrorIs(t, err, learning.ErrQuizNotFound)
	})

	quiz, err := env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: "Basics", Questions: questions()})
	require.NoError(t, err)
	assert.Equal(t, 70, quiz.PassThreshold)

	res, err := env.Learning.SubmitQuiz(student, quiz.ID, map[int]int{0: 1, 1: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempt.Score)
	assert.Equal(t, 3, res.Attempt.Total)
	assert.Equal(t, 67, res.Attempt.Percentage)
	assert.False(t, res.Attempt.Passed)
	assert.Equal(t, -1, res.Questions[2].Answer)
	assert.False(t, res.Questions[2].Correct)
	assert.Equal(t, "goroutines", res.Questions[1].Explanation)

	quiz, err = env.Learning.UpdateQuiz(quiz.ID, learning.QuizPatch{PassThreshold: intPtr(60)})
	require.NoError(t, err)
	assert.True(t, quiz.UpdatedAt.Valid)

	res, err = env.Learning.SubmitQuiz(student, quiz.ID, map[int]int{0: 1, 1: 0})
	require.NoError(t, err)
	assert.True(t, res.Attempt.Passed)
	assert.Equal(t, quiz.ID, res.Attempt.QuizID)

	assert.Len(t, env.Learning.QuizAttempts(student, courseAI), 2)
}

func TestService_SubmitAssignment(t *testing.T) {
	env := newEnrolled(t)

	assignment, err := env.Learning.AddAssignment(courseAI, learning.NewAssignment{Title: "Project"})
	require.NoError(t, err)
	assert.Equal(t, float64(100), assignment.MaxScore)

	_, err = env.Learning.SubmitAssignment(student, "assign-ghost", learning.NewSubmission{})
	assert.ErrorIs(t, err, learning.ErrAssignmentNotFound)

	first, err := env.Learning.SubmitAssignment(student, assignment.ID, learning.NewSubmission{Content: "v1"})
	require.NoError(t, err)
	second, err := env.Learning.SubmitAssignment(student, assignment.ID, learning.NewSubmission{Content: "v2"})
	require.NoError(t, err)

	latest, ok := env.Learning.SubmissionFor(student, assignment.ID)
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID)
	assert.Len(t, env.Learning.SubmissionsForAssignment(assignment.ID), 2)
	assert.Len(t, env.Learning.SubmissionsForCourse(courseAI), 2)

	notifs := env.Notifications.ForUser(instructor)
	require.Len(t, notifs, 2)
	assert.Equal(t, `Default Student has submitted the assignment "Project" for your course "Advanced AI Prompt Engineering".`, notifs[0].Message)

	require.NoError(t, env.Learning.GradeAssignment(first.ID, 85, "Good"))
	assert.Equal(t, "Your assignment has been graded. Score: 85", env.Notifications.ForUser(student)[0].Message)
	assert.ErrorIs(t, env.Learning.GradeAssignment("sub-ghost", 1, ""), learning.ErrSubmissionNotFound)

	for _, grade := range []float64{-1, 100.5} {
		err := env.Learning.GradeAssignment(second.ID, grade, "")
		assert.True(t, core.IsValidationError(err), "grade %v", grade)
		assert.ErrorIs(t, err, learning.ErrInvalidGrade)
	}
	pending, ok := env.Learning.SubmissionFor(student, assignment.ID)
	require.True(t, ok)
	assert.False(t, pending.Graded)
	require.NoError(t, env.Learning.GradeAssignment(second.ID, 100, ""))

	maxScore := -5.0
	_, err = env.Learning.UpdateAssignment(assignment.ID, learning.AssignmentPatch{MaxScore: &maxScore})
	assert.True(t, core.IsValidationError(err))
}

func TestService_DeleteCourse(t *testing.T) {
	env := newEnrolled(t)
	env.Learning.CompleteLesson(student, courseAI, 0)
	_, err := env.Learning.AddOrUpdateReview(student, courseAI, 5, "")
	require.NoError(t, err)
	quiz, err := env.Learning.AddQuiz(courseAI, learning.NewQuiz{Title: "Quiz", Questions: questions()})
	require.NoError(t, err)
	_, err = env.Learning.SubmitQuiz(student, quiz.ID, map[int]int{0: 1, 1: 0, 2: 1})
	require.NoError(t, err)
	assignment, err := env.Learning.AddAssignment(courseAI, learning.NewAssignment{Title: "Project"})
	require.NoError(t, err)
	sub, err := env.Learning.SubmitAssignment(student, assignment.ID, learning.NewSubmission{Content: "done"})
	require.NoError(t, err)
	require.NoError(t, env.Learning.GradeAssignment(sub.ID, 90, ""))
	_, err = env.Learning.GenerateCertificate(student, courseAI)
	require.NoError(t, err)

	// unrelated rows survive
	res := env.Learning.Enroll(student, "course-fs", learning.PaymentFree)
	require.True(t, res.Success)

	require.NoError(t, env.Learning.DeleteCourse(courseAI))

	_, err = env.Learning.GetCourse(courseAI)
	assert.ErrorIs(t, err, learning.ErrCourseNotFound)
	assert.Empty(t, env.Learning.EnrollmentsForCourse(courseAI))
	assert.Empty(t, env.Learning.ReviewsForCourse(courseAI))
	assert.Empty(t, env.Learning.QuizzesForCourse(courseAI))
	assert.Empty(t, env.Learning.QuizAttempts(student, courseAI))
	assert.Empty(t, env.Learning.AssignmentsForCourse(courseAI))
	assert.Empty(t, env.Learning.SubmissionsForAssignment(assignment.ID))
	assert.False(t, env.Learning.IsLessonCompleted(student, courseAI, 0))
	assert.Len(t, env.Learning.CertificatesForUser(student), 1)
	assert.Len(t, env.Learning.EnrollmentsForUser(student), 1)

	assert.ErrorIs(t, env.Learning.DeleteCourse(courseAI), learning.ErrCourseNotFound)
}

func TestService_AddCategory(t *testing.T) {
	env := testutil.NewEnv(t)

	cat, err := env.Learning.AddCategory(" development ")
	require.NoError(t, err)
	assert.Equal(t, "cat-dev", cat.ID)

	cat, err = env.Learning.AddCategory("Photography")
	require.NoError(t, err)
	assert.Equal(t, "Photography", cat.Name)
	assert.Len(t, env.Learning.Categories(), 5)

	_, err = env.Learning.AddCategory("  ")
	assert.True(t, core.IsValidationError(err))
}

func TestService_Stats(t *testing.T) {
	env := newEnrolled(t)
	_, err := env.Learning.AddCourseDraft(learning.NewCourse{Title: "Draft"})
	require.NoError(t, err)

	assert.Equal(t, learning.PlatformStats{
		Users:            3,
		Students:         1,
		Instructors:      1,
		LiveCourses:      4,
		PendingApprovals: 1,
		Enrollments:      1,
	}, env.Learning.Stats())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want learning.Status
	}{
		{"pending", learning.StatusPending},
		{"live", learning.StatusLive},
		{"rejected", learning.StatusRejected},
		{"", learning.StatusApproved},
		{"published", learning.StatusApproved},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, learning.ParseStatus(tt.in))
		})
	}
	assert.True(t, learning.StatusLive.Enrollable())
	assert.False(t, learning.StatusPending.Enrollable())
}

func TestCourse_Persistable(t *testing.T) {
	course := learning.Course{
		Image:     "blob:http://localhost/img",
		Lessons:   []learning.Lesson{{Title: "One", VideoURL: "blob:http://localhost/vid", Resources: []learning.Resource{{Name: "a", URL: "blob:x"}}}},
		Resources: []learning.Resource{{Name: "b", URL: "https://cdn.test.cd/b.pdf"}, {Name: "c", URL: "blob:y"}},
	}

	p := course.Persistable()
	assert.Empty(t, p.Image)
	assert.Empty(t, p.Lessons[0].VideoURL)
	assert.True(t, p.Lessons[0].Resources[0].Missing())
	assert.Equal(t, "https://cdn.test.cd/b.pdf", p.Resources[0].URL)
	assert.True(t, p.Resources[1].Missing())

	// the original is left untouched
	assert.Equal(t, "blob:http://localhost/vid", course.Lessons[0].VideoURL)
	assert.Equal(t, "blob:y", course.Resources[1].URL)
}

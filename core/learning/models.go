package learning

import (
	"encoding/json"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/hatag-tech/elearning/core"
)

type Status string

// Course statuses
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusLive     Status = "live" // approved alias
	StatusRejected Status = "rejected"
	StatusArchived Status = "archived"
)

// ParseStatus maps a persisted status to its variant. Absent or unknown values are approved.
func ParseStatus(s string) Status {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusLive, StatusRejected, StatusArchived:
		return st
	}
	return StatusApproved
}

// Enrollable reports whether students may enroll in a course with this status.
func (s Status) Enrollable() bool {
	return s == StatusApproved || s == StatusLive
}

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "paid"
	PaymentFree PaymentStatus = "free"
)

type Resource struct {
	Name string `json:"name"`
	Size string `json:"size,omitempty"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Persistable reports whether the resource URL survives beyond the session that created it.
func (r Resource) Persistable() bool { return !core.IsEphemeralURL(r.URL) }

// Missing reports whether the resource has no usable URL, eg. after a session-scoped handle was dropped.
func (r Resource) Missing() bool { return r.URL == "" }

func persistableResources(rs []Resource) []Resource {
	if rs == nil {
		return nil
	}
	out := make([]Resource, len(rs))
	for i, r := range rs {
		if !r.Persistable() {
			r.URL = ""
		}
		out[i] = r
	}
	return out
}

type Lesson struct {
	Title       string     `json:"title"`
	Duration    string     `json:"duration,omitempty"`
	VideoURL    string     `json:"video_url,omitempty"`
	Description string     `json:"description,omitempty"`
	QuizID      string     `json:"quiz_id,omitempty"`
	Resources   []Resource `json:"resources,omitempty"`
}

type Course struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Instructor  string     `json:"instructor"`
	AuthorID    string     `json:"author_id,omitempty"`
	Category    string     `json:"category"`
	Level       Level      `json:"level,omitempty"`
	Price       float64    `json:"price"`
	Rating      float64    `json:"rating"`
	Students    int        `json:"students"`
	Image       string     `json:"image,omitempty"`
	Status      Status     `json:"status"`
	Lessons     []Lesson   `json:"lessons"`
	Resources   []Resource `json:"course_resources"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (c *Course) UnmarshalJSON(data []byte) error {
	type course Course
	var tmp struct {
		course
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*c = Course(tmp.course)
	c.Status = ParseStatus(tmp.Status)
	return nil
}

func (c Course) HasQuizLesson() bool {
	for _, l := range c.Lessons {
		if l.QuizID != "" {
			return true
		}
	}
	return false
}

// Persistable returns a copy of the course with session-scoped URLs dropped.
func (c Course) Persistable() Course {
	if core.IsEphemeralURL(c.Image) {
		c.Image = ""
	}
	c.Resources = persistableResources(c.Resources)
	if c.Lessons != nil {
		lessons := make([]Lesson, len(c.Lessons))
		for i, l := range c.Lessons {
			if core.IsEphemeralURL(l.VideoURL) {
				l.VideoURL = ""
			}
			l.Resources = persistableResources(l.Resources)
			lessons[i] = l
		}
		c.Lessons = lessons
	}
	return c
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Enrollment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	CourseID      string        `json:"course_id"`
	Progress      int           `json:"progress"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	EnrolledAt    time.Time     `json:"enrolled_at"`
}

type LessonCompletion struct {
	Key         string    `json:"key"` // <userID>-<courseID>-<index>
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	LessonIndex int       `json:"lesson_index"`
	CompletedAt time.Time `json:"completed_at"`
}

type QuizAttempt struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	QuizID      string    `json:"quiz_id,omitempty"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}

type Question struct {
	Question      string   `json:"question" validate:"notblank"`
	Options       []string `json:"options" validate:"min=2,dive,notblank"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is an instructor-authored quiz attached to a course.
type Quiz struct {
	ID            string     `json:"id"`
	CourseID      string     `json:"course_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	PassThreshold int        `json:"pass_threshold"`
	Questions     []Question `json:"questions"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     null.Time  `json:"updated_at"`
}

type Assignment struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     null.Time `json:"due_date"`
	MaxScore    float64   `json:"max_score"`
	CreatedAt   time.Time `json:"created_at"`
}

type Submission struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	AssignmentID string     `json:"assignment_id"`
	Content      string     `json:"content"`
	Attachments  []Resource `json:"attachments,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	Graded       bool       `json:"graded"`
	Grade        float64    `json:"grade"`
	Feedback     string     `json:"feedback,omitempty"`
	GradedAt     null.Time  `json:"graded_at"`
}

func (s Submission) Persistable() Submission {
	s.Attachments = persistableResources(s.Attachments)
	return s
}

type Certificate struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CourseID     string    `json:"course_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	CourseTitle  string    `json:"course_title"`
	Instructor   string    `json:"instructor"`
	IssuedAt     time.Time `json:"issued_at"`
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt null.Time `json:"updated_at"`
}

// Inputs

// NewCourse contains the information an instructor provides to submit a course draft.
type NewCourse struct {
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description"`
	Instructor  string     `json:"instructor"`
	AuthorID    string     `json:"author_id"`
	Category    string     `json:"category"`
	Level       Level      `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       float64    `json:"price" validate:"gte=0"`
	Image       string     `json:"image"`
	Lessons     []Lesson   `json:"lessons"`
	Resources   []Resource `json:"course_resources"`
	Tags        []string   `json:"tags"`
}

// CoursePatch is a merge-patch: nil fields are left untouched.
type CoursePatch struct {
	Title       *string    `json:"title" validate:"omitempty,notblank"`
	Description *string    `json:"description"`
	Instructor  *string    `json:"instructor"`
	Category    *string    `json:"category"`
	Level       *Level     `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	Image       *string    `json:"image"`
	Lessons     []Lesson   `json:"lessons"`
	Resources   []Resource `json:"course_resources"`
	Tags        []string   `json:"tags"`
}

type NewQuiz struct {
	Title         string     `json:"title" validate:"notblank"`
	Description   string     `json:"description"`
	PassThreshold *int       `json:"pass_threshold" validate:"omitempty,gte=0,lte=100"`
	Questions     []Question `json:"questions" validate:"dive"`
}

type QuizPatch struct {
	Title         *string    `json:"title" validate:"omitempty,notblank"`
	Description   *string    `json:"description"`
	PassThreshold *int       `json:"pass_threshold" validate:"omitempty,gte=0,lte=100"`
	Questions     []Question `json:"questions" validate:"omitempty,dive"`
}

type NewAssignment struct {
	Title       string    `json:"title" validate:"notblank"`
	Description string    `json:"description"`
	DueDate     null.Time `json:"due_date"`
	MaxScore    float64   `json:"max_score" validate:"gte=0"`
}

type AssignmentPatch struct {
	Title       *string    `json:"title" validate:"omitempty,notblank"`
	Description *string    `json:"description"`
	DueDate     *null.Time `json:"due_date"`
	MaxScore    *float64   `json:"max_score" validate:"omitempty,gt=0"`
}

type NewSubmission struct {
	Content     string     `json:"content"`
	Attachments []Resource `json:"attachments"`
}

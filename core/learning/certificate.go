package learning

import (
	"fmt"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/notification"
)

// Reason explains why a learner is not eligible for a certificate.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNotEnrolled        Reason = "not_enrolled"
	ReasonIncomplete         Reason = "incomplete"
	ReasonCourseMissing      Reason = "course_missing"
	ReasonQuizMissing        Reason = "quiz_missing"
	ReasonQuizAverage        Reason = "quiz_average"
	ReasonAssignmentUngraded Reason = "assignment_ungraded"
	ReasonAssignmentAverage  Reason = "assignment_average"
)

type Eligibility struct {
	Eligible          bool    `json:"eligible"`
	Reason            Reason  `json:"reason,omitempty"`
	Progress          int     `json:"progress"`
	QuizAverage       float64 `json:"quiz_average"`
	AssignmentAverage float64 `json:"assignment_average"`
}

func (e Eligibility) fail(reason Reason) Eligibility {
	e.Eligible = false
	e.Reason = reason
	return e
}

// CanGenerateCertificate reports whether userID may receive a certificate for the course.
func (svc *Service) CanGenerateCertificate(userID, courseID string) bool {
	return svc.CheckEligibility(userID, courseID).Eligible
}

// CheckEligibility evaluates, in order:
//  1. the enrollment progress reaches the minimum progress;
//  2. if the course has quizzes, the user attempted them and the mean attempt percentage reaches the minimum quiz score;
//  3. if the course has assignments, the user has graded submissions whose mean percentage reaches the minimum assignment score.
func (svc *Service) CheckEligibility(userID, courseID string) Eligibility {
	var elig Eligibility

	enrollment, ok := svc.GetEnrollment(userID, courseID)
	if !ok {
		return elig.fail(ReasonNotEnrolled)
	}
	elig.Progress = enrollment.Progress
	if enrollment.Progress < svc.rules.MinProgress {
		return elig.fail(ReasonIncomplete)
	}

	course, err := svc.GetCourse(courseID)
	if err != nil {
		return elig.fail(ReasonCourseMissing)
	}

	// quizzes
	hasQuizzes := course.HasQuizLesson() || svc.repos.Quizzes.Count(byCourse[Quiz](courseID)) > 0
	attempts := svc.QuizAttempts(userID, courseID)
	if hasQuizzes && len(attempts) == 0 {
		return elig.fail(ReasonQuizMissing)
	}
	if len(attempts) > 0 {
		pcts := make([]int, len(attempts))
		for i, a := range attempts {
			pcts[i] = a.Percentage
		}
		elig.QuizAverage = mean(pcts)
		if elig.QuizAverage < svc.rules.MinQuizScore {
			return elig.fail(ReasonQuizAverage)
		}
	}

	// assignments
	assignments := svc.AssignmentsForCourse(courseID)
	if len(assignments) > 0 {
		maxScores := make(map[string]float64, len(assignments))
		for _, a := range assignments {
			maxScores[a.ID] = a.MaxScore
		}
		graded := svc.repos.Submissions.Filter(func(s Submission) bool {
			_, ok := maxScores[s.AssignmentID]
			return ok && s.UserID == userID && s.Graded
		})
		if len(graded) == 0 {
			return elig.fail(ReasonAssignmentUngraded)
		}
		pcts := make([]int, len(graded))
		for i, s := range graded {
			maxScore := maxScores[s.AssignmentID]
			if maxScore <= 0 {
				maxScore = defaultMaxScore
			}
			pcts[i] = percentage(s.Grade, maxScore)
		}
		elig.AssignmentAverage = mean(pcts)
		if elig.AssignmentAverage < svc.rules.MinAssignmentScore {
			return elig.fail(ReasonAssignmentAverage)
		}
	}

	elig.Eligible = true
	return elig
}

// GenerateCertificate issues the certificate of userID for the course.
// Issuance is idempotent: an existing certificate is returned unchanged.
func (svc *Service) GenerateCertificate(userID, courseID string) (Certificate, error) {
	if !svc.CanGenerateCertificate(userID, courseID) {
		return Certificate{}, ErrNotEligible
	}

	course, err := svc.GetCourse(courseID)
	if err != nil {
		return Certificate{}, err
	}
	var studentName, studentEmail string
	if usr, err := svc.users.GetByID(userID); err == nil {
		studentName = usr.DisplayName("Learner")
		studentEmail = usr.Email
	} else {
		studentName = "Learner"
	}

	var (
		cert   Certificate
		issued bool
	)
	svc.repos.Certificates.Mutate(func(rows []Certificate) []Certificate {
		for _, c := range rows {
			if c.UserID == userID && c.CourseID == courseID {
				cert = c
				return rows
			}
		}
		issued = true
		cert = Certificate{
			ID:           core.NewID("cert-"),
			UserID:       userID,
			CourseID:     courseID,
			StudentName:  studentName,
			StudentEmail: studentEmail,
			CourseTitle:  course.Title,
			Instructor:   course.Instructor,
			IssuedAt:     core.Now(),
		}
		return append(rows, cert)
	})

	if issued {
		svc.notifier.Add(
			userID,
			"New Certificate Earned",
			fmt.Sprintf("Congratulations! You've earned a certificate for %s!", course.Title),
			notification.TypeSuccess,
			nil,
		)
	}
	return cert, nil
}

func (svc *Service) CertificatesForUser(userID string) []Certificate {
	return svc.repos.Certificates.Filter(func(c Certificate) bool { return c.UserID == userID })
}

func (svc *Service) GetCertificate(id string) (Certificate, error) {
	cert, ok := svc.repos.Certificates.Find(func(c Certificate) bool { return c.ID == id })
	if !ok {
		return Certificate{}, ErrCertificateNotFound
	}
	return cert, nil
}

package learning

import (
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/notification"
)

const defaultMaxScore = 100

func (svc *Service) AddAssignment(courseID string, na NewAssignment) (Assignment, error) {
	if _, err := svc.GetCourse(courseID); err != nil {
		return Assignment{}, err
	}
	na.Title = core.CleanString(na.Title)
	if err := svc.validator.Struct(na); err != nil {
		return Assignment{}, err
	}

	maxScore := na.MaxScore
	if maxScore <= 0 {
		maxScore = defaultMaxScore
	}
	assignment := Assignment{
		ID:          core.NewID("assign-"),
		CourseID:    courseID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		MaxScore:    maxScore,
		CreatedAt:   core.Now(),
	}
	svc.repos.Assignments.Append(assignment)
	return assignment, nil
}

func (svc *Service) UpdateAssignment(assignmentID string, patch AssignmentPatch) (Assignment, error) {
	if err := svc.validator.Struct(patch); err != nil {
		return Assignment{}, err
	}

	var updated Assignment
	n := svc.repos.Assignments.Update(func(a Assignment) bool { return a.ID == assignmentID }, func(a *Assignment) {
		if patch.Title != nil {
			a.Title = core.CleanString(*patch.Title)
		}
		if patch.Description != nil {
			a.Description = *patch.Description
		}
		if patch.DueDate != nil {
			a.DueDate = *patch.DueDate
		}
		if patch.MaxScore != nil {
			a.MaxScore = *patch.MaxScore
		}
		updated = *a
	})
	if n == 0 {
		return Assignment{}, ErrAssignmentNotFound
	}
	return updated, nil
}

func (svc *Service) GetAssignment(assignmentID string) (Assignment, error) {
	a, ok := svc.repos.Assignments.Find(func(a Assignment) bool { return a.ID == assignmentID })
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

func (svc *Service) AssignmentsForCourse(courseID string) []Assignment {
	return svc.repos.Assignments.Filter(byCourse[Assignment](courseID))
}

// SubmitAssignment records a submission and notifies the course author.
// One submission per user and assignment is expected but not enforced.
func (svc *Service) SubmitAssignment(userID, assignmentID string, ns NewSubmission) (Submission, error) {
	assignment, err := svc.GetAssignment(assignmentID)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		ID:           core.NewID("sub-"),
		UserID:       userID,
		AssignmentID: assignmentID,
		Content:      ns.Content,
		Attachments:  ns.Attachments,
		SubmittedAt:  core.Now(),
	}
	svc.repos.Submissions.Append(sub)

	course, err := svc.GetCourse(assignment.CourseID)
	if err != nil {
		return sub, nil
	}
	studentName := "A student"
	if usr, err := svc.users.GetByID(userID); err == nil {
		studentName = usr.DisplayName(studentName)
	}
	svc.notifyAuthor(course,
		"New Assignment Submission",
		fmt.Sprintf("%s has submitted the assignment %q for your course %q.", studentName, assignment.Title, course.Title),
		notification.TypeInfo,
		map[string]interface{}{"submissionId": sub.ID, "courseId": course.ID},
	)
	return sub, nil
}

// GradeAssignment grades a submission and notifies the student of the score.
// The grade must lie within 0 and the assignment's max score.
func (svc *Service) GradeAssignment(submissionID string, grade float64, feedback string) error {
	sub, ok := svc.repos.Submissions.Find(func(s Submission) bool { return s.ID == submissionID })
	if !ok {
		return ErrSubmissionNotFound
	}
	maxScore := float64(defaultMaxScore)
	if a, err := svc.GetAssignment(sub.AssignmentID); err == nil && a.MaxScore > 0 {
		maxScore = a.MaxScore
	}
	if grade < 0 || grade > maxScore {
		return core.NewValidationError(ErrInvalidGrade, core.FieldError{
			Field: "grade",
			Error: fmt.Sprintf("grade must be between 0 and %v", maxScore),
		})
	}

	n := svc.repos.Submissions.Update(func(s Submission) bool { return s.ID == submissionID }, func(s *Submission) {
		s.Grade = grade
		s.Feedback = feedback
		s.Graded = true
		s.GradedAt = null.TimeFrom(core.Now())
		sub = *s
	})
	if n == 0 {
		return ErrSubmissionNotFound
	}

	svc.notifier.Add(
		sub.UserID,
		"Assignment Graded",
		fmt.Sprintf("Your assignment has been graded. Score: %v", grade),
		notification.TypeInfo,
		nil,
	)
	return nil
}

func (svc *Service) SubmissionsForAssignment(assignmentID string) []Submission {
	return svc.repos.Submissions.Filter(func(s Submission) bool { return s.AssignmentID == assignmentID })
}

func (svc *Service) SubmissionsForCourse(courseID string) []Submission {
	ids := make(map[string]bool)
	for _, a := range svc.AssignmentsForCourse(courseID) {
		ids[a.ID] = true
	}
	return svc.repos.Submissions.Filter(func(s Submission) bool { return ids[s.AssignmentID] })
}

// SubmissionFor returns the latest submission of userID for the assignment.
func (svc *Service) SubmissionFor(userID, assignmentID string) (Submission, bool) {
	subs := svc.repos.Submissions.Filter(func(s Submission) bool {
		return s.UserID == userID && s.AssignmentID == assignmentID
	})
	if len(subs) == 0 {
		return Submission{}, false
	}
	return subs[len(subs)-1], true
}

package learning

import (
	"fmt"
	"math"
	"strings"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/notification"
	"github.com/hatag-tech/elearning/core/user"
)

const filterAll = "All"

type (
	CatalogFilter struct {
		Search   string
		Category string // "" or "All" matches any
		Level    Level  // "" or "All" matches any
		Page     int    // 1-based
		PageSize int
	}

	CatalogPage struct {
		Courses    []Course `json:"courses"`
		Page       int      `json:"page"`
		Pages      int      `json:"pages"`
		Total      int      `json:"total"`
		Categories []string `json:"categories"`
	}

	PlatformStats struct {
		Users            int `json:"users"`
		Students         int `json:"students"`
		Instructors      int `json:"instructors"`
		LiveCourses      int `json:"live_courses"`
		PendingApprovals int `json:"pending_approvals"`
		Enrollments      int `json:"enrollments"`
		Certificates     int `json:"certificates"`
	}
)

func byID(id string) func(Course) bool {
	return func(c Course) bool { return c.ID == id }
}

func byCourse[T interface{ courseID() string }](courseID string) func(T) bool {
	return func(row T) bool { return row.courseID() == courseID }
}

func (e Enrollment) courseID() string       { return e.CourseID }
func (r Review) courseID() string           { return r.CourseID }
func (l LessonCompletion) courseID() string { return l.CourseID }
func (q QuizAttempt) courseID() string      { return q.CourseID }
func (q Quiz) courseID() string             { return q.CourseID }
func (a Assignment) courseID() string       { return a.CourseID }

func (svc *Service) GetCourse(id string) (Course, error) {
	course, ok := svc.repos.Courses.Find(byID(id))
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return course, nil
}

func (svc *Service) Courses() []Course {
	return svc.repos.Courses.All()
}

// Approvals returns the courses awaiting an admin decision, oldest first.
func (svc *Service) Approvals() []Course {
	return svc.repos.Approvals.All()
}

func (svc *Service) CoursesByAuthor(authorID string) []Course {
	return svc.repos.Courses.Filter(func(c Course) bool { return c.AuthorID == authorID })
}

func (svc *Service) Categories() []Category {
	return svc.repos.Categories.All()
}

// AddCategory adds a category unless one with the same name (case-insensitive) exists.
func (svc *Service) AddCategory(name string) (Category, error) {
	name = core.CleanString(name)
	if name == "" {
		return Category{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field cannot be blank"})
	}

	var cat Category
	svc.repos.Categories.Mutate(func(rows []Category) []Category {
		for _, c := range rows {
			if strings.EqualFold(c.Name, name) {
				cat = c
				return rows
			}
		}
		cat = Category{ID: core.NewID("cat-"), Name: name}
		return append(rows, cat)
	})
	return cat, nil
}

// AddCourseDraft submits a new course for approval and notifies the master admin.
func (svc *Service) AddCourseDraft(nc NewCourse) (Course, error) {
	nc.Title = core.CleanString(nc.Title)
	if err := svc.validator.Struct(nc); err != nil {
		return Course{}, err
	}

	course := Course{
		ID:          core.NewID("course-"),
		Title:       nc.Title,
		Description: nc.Description,
		Instructor:  nc.Instructor,
		AuthorID:    nc.AuthorID,
		Category:    nc.Category,
		Level:       nc.Level,
		Price:       nc.Price,
		Image:       nc.Image,
		Status:      StatusPending,
		Lessons:     nc.Lessons,
		Resources:   nc.Resources,
		Tags:        nc.Tags,
		CreatedAt:   core.Now(),
	}
	svc.repos.Approvals.Append(course)
	svc.repos.Courses.Append(course)

	if admin, err := svc.users.FindMasterAdmin(); err == nil {
		svc.notifier.Add(
			admin.ID,
			"New Course Submission",
			fmt.Sprintf("%s has submitted %q for approval.", course.Instructor, course.Title),
			notification.TypeInfo,
			map[string]interface{}{"courseId": course.ID, "type": "course_approval"},
		)
	}
	return course, nil
}

// ApproveCourse publishes a pending course. A rejected course is deleted with everything
// that depends on it, as DeleteCourse does.
func (svc *Service) ApproveCourse(courseID string, approved bool) error {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		if _, queued := svc.repos.Approvals.Find(byID(courseID)); !queued {
			return err
		}
		course, _ = svc.repos.Approvals.Find(byID(courseID))
	}

	svc.repos.Approvals.Delete(byID(courseID))
	if approved {
		svc.repos.Courses.Update(byID(courseID), func(c *Course) { c.Status = StatusApproved })
		svc.notifyAuthor(course,
			"Course Approved!",
			fmt.Sprintf("Your course %q has been approved and is now live.", course.Title),
			notification.TypeSuccess,
			nil,
		)
		return nil
	}

	svc.purgeCourse(courseID)
	svc.notifyAuthor(course,
		"Course Rejected",
		fmt.Sprintf("Your course %q was not approved by the admin.", course.Title),
		notification.TypeDanger,
		nil,
	)
	return nil
}

func (svc *Service) notifyAuthor(course Course, title, message string, typ notification.Type, data map[string]interface{}) {
	if course.AuthorID == "" {
		return
	}
	svc.notifier.Add(course.AuthorID, title, message, typ, data)
}

// DeleteCourse removes the course and everything that depends on it.
// Certificates already issued are kept.
func (svc *Service) DeleteCourse(courseID string) error {
	if svc.purgeCourse(courseID) == 0 {
		return ErrCourseNotFound
	}
	svc.logger.Info("course deleted", map[string]interface{}{"courseId": courseID})
	return nil
}

// purgeCourse deletes the course row, its queue entry and its dependent records,
// returning how many course rows were removed.
func (svc *Service) purgeCourse(courseID string) int {
	n := svc.repos.Courses.Delete(byID(courseID))
	svc.repos.Approvals.Delete(byID(courseID))
	svc.repos.Enrollments.Delete(byCourse[Enrollment](courseID))
	svc.repos.Reviews.Delete(byCourse[Review](courseID))
	svc.repos.Completions.Delete(byCourse[LessonCompletion](courseID))
	svc.repos.QuizAttempts.Delete(byCourse[QuizAttempt](courseID))
	svc.repos.Quizzes.Delete(byCourse[Quiz](courseID))

	assignmentIDs := make(map[string]bool)
	for _, a := range svc.AssignmentsForCourse(courseID) {
		assignmentIDs[a.ID] = true
	}
	svc.repos.Assignments.Delete(byCourse[Assignment](courseID))
	if len(assignmentIDs) > 0 {
		svc.repos.Submissions.Delete(func(s Submission) bool { return assignmentIDs[s.AssignmentID] })
	}
	return n
}

// UpdateCourse merges the set fields of patch into the course.
func (svc *Service) UpdateCourse(courseID string, patch CoursePatch) (Course, error) {
	if err := svc.validator.Struct(patch); err != nil {
		return Course{}, err
	}

	var updated Course
	n := svc.repos.Courses.Update(byID(courseID), func(c *Course) {
		if patch.Title != nil {
			c.Title = core.CleanString(*patch.Title)
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.Instructor != nil {
			c.Instructor = *patch.Instructor
		}
		if patch.Category != nil {
			c.Category = *patch.Category
		}
		if patch.Level != nil {
			c.Level = *patch.Level
		}
		if patch.Price != nil {
			c.Price = *patch.Price
		}
		if patch.Image != nil {
			c.Image = *patch.Image
		}
		if patch.Lessons != nil {
			c.Lessons = patch.Lessons
		}
		if patch.Resources != nil {
			c.Resources = patch.Resources
		}
		if patch.Tags != nil {
			c.Tags = patch.Tags
		}
		updated = *c
	})
	if n == 0 {
		return Course{}, ErrCourseNotFound
	}

	// keep the queued copy in sync so that the admin reviews the latest draft
	svc.repos.Approvals.Update(byID(courseID), func(c *Course) {
		status := c.Status
		*c = updated
		c.Status = status
	})
	return updated, nil
}

func (svc *Service) AddLesson(courseID string, lesson Lesson) (Course, error) {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return Course{}, err
	}
	lessons := append(append(make([]Lesson, 0, len(course.Lessons)+1), course.Lessons...), lesson)
	return svc.UpdateCourse(courseID, CoursePatch{Lessons: lessons})
}

func (svc *Service) UpdateLesson(courseID string, index int, lesson Lesson) (Course, error) {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return Course{}, err
	}
	if index < 0 || index >= len(course.Lessons) {
		return Course{}, ErrLessonNotFound
	}
	lessons := append(make([]Lesson, 0, len(course.Lessons)), course.Lessons...)
	lessons[index] = lesson
	return svc.UpdateCourse(courseID, CoursePatch{Lessons: lessons})
}

// RemoveLesson drops the lesson at index. Progress already recorded is not recomputed.
func (svc *Service) RemoveLesson(courseID string, index int) (Course, error) {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return Course{}, err
	}
	if index < 0 || index >= len(course.Lessons) {
		return Course{}, ErrLessonNotFound
	}
	lessons := make([]Lesson, 0, len(course.Lessons)-1)
	lessons = append(lessons, course.Lessons[:index]...)
	lessons = append(lessons, course.Lessons[index+1:]...)
	return svc.UpdateCourse(courseID, CoursePatch{Lessons: lessons})
}

func (svc *Service) AddCourseResource(courseID string, res Resource) (Course, error) {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return Course{}, err
	}
	resources := append(append(make([]Resource, 0, len(course.Resources)+1), course.Resources...), res)
	return svc.UpdateCourse(courseID, CoursePatch{Resources: resources})
}

func (svc *Service) RemoveCourseResource(courseID string, index int) (Course, error) {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return Course{}, err
	}
	if index < 0 || index >= len(course.Resources) {
		return Course{}, ErrNotFound
	}
	resources := make([]Resource, 0, len(course.Resources)-1)
	resources = append(resources, course.Resources[:index]...)
	resources = append(resources, course.Resources[index+1:]...)
	return svc.UpdateCourse(courseID, CoursePatch{Resources: resources})
}

// Catalog lists the enrollable courses matching filter, one page at a time.
func (svc *Service) Catalog(filter CatalogFilter) CatalogPage {
	search := strings.ToLower(core.CleanString(filter.Search))
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = svc.pageSize
	}

	categories := make([]string, 0)
	seen := make(map[string]bool)
	matched := svc.repos.Courses.Filter(func(c Course) bool {
		if !c.Status.Enrollable() {
			return false
		}
		if !seen[c.Category] {
			seen[c.Category] = true
			categories = append(categories, c.Category)
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title), search) {
			return false
		}
		if filter.Category != "" && filter.Category != filterAll && c.Category != filter.Category {
			return false
		}
		if filter.Level != "" && filter.Level != filterAll && c.Level != filter.Level {
			return false
		}
		return true
	})

	pages := int(math.Max(1, math.Ceil(float64(len(matched))/float64(pageSize))))
	page := filter.Page
	if page < 1 {
		page = 1
	} else if page > pages {
		page = pages
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return CatalogPage{
		Courses:    matched[start:end],
		Page:       page,
		Pages:      pages,
		Total:      len(matched),
		Categories: categories,
	}
}

func (svc *Service) Stats() PlatformStats {
	stats := PlatformStats{
		LiveCourses:      svc.repos.Courses.Count(func(c Course) bool { return c.Status.Enrollable() }),
		PendingApprovals: svc.repos.Approvals.Count(nil),
		Enrollments:      svc.repos.Enrollments.Count(nil),
		Certificates:     svc.repos.Certificates.Count(nil),
	}
	for _, usr := range svc.users.QueryAll() {
		stats.Users++
		switch usr.Role {
		case user.RoleStudent:
			stats.Students++
		case user.RoleInstructor:
			stats.Instructors++
		}
	}
	return stats
}

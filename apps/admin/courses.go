package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/hatag-tech/elearning/core/learning"
)

func (cli *commandLine) listApprovals() {
	pending := cli.learnSvc.Approvals()
	if len(pending) == 0 {
		fmt.Fprintln(cli.out, "no course awaiting approval")
		return
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tINSTRUCTOR\tSUBMITTED")
	for _, c := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Title, c.Instructor, c.CreatedAt.Format("2006-01-02"))
	}
	_ = w.Flush()
}

func (cli *commandLine) approve(courseID string, approved bool) error {
	if err := cli.learnSvc.ApproveCourse(courseID, approved); err != nil {
		return err
	}
	if approved {
		fmt.Fprintf(cli.out, "%s approved\n", courseID)
	} else {
		fmt.Fprintf(cli.out, "%s rejected\n", courseID)
	}
	return nil
}

func (cli *commandLine) catalog(filter learning.CatalogFilter) {
	page := cli.learnSvc.Catalog(filter)
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tLEVEL\tPRICE")
	for _, c := range page.Courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n", c.ID, c.Title, c.Category, c.Level, c.Price)
	}
	_ = w.Flush()
	fmt.Fprintf(cli.out, "page %d/%d - %d course(s)\n", page.Page, page.Pages, page.Total)
}

func (cli *commandLine) certificate(userID, courseID string) error {
	elig := cli.learnSvc.CheckEligibility(userID, courseID)
	if !elig.Eligible {
		fmt.Fprintf(cli.out, "not eligible: %s (progress %d%%, quizzes %.0f%%, assignments %.0f%%)\n",
			elig.Reason, elig.Progress, elig.QuizAverage, elig.AssignmentAverage)
		return learning.ErrNotEligible
	}
	cert, err := cli.learnSvc.GenerateCertificate(userID, courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "certificate %s issued to %s for %q on %s\n",
		cert.ID, cert.StudentName, cert.CourseTitle, cert.IssuedAt.Format("2006-01-02"))
	return nil
}

func (cli *commandLine) stats() {
	s := cli.learnSvc.Stats()
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "users\t%d\n", s.Users)
	fmt.Fprintf(w, "students\t%d\n", s.Students)
	fmt.Fprintf(w, "instructors\t%d\n", s.Instructors)
	fmt.Fprintf(w, "live courses\t%d\n", s.LiveCourses)
	fmt.Fprintf(w, "pending approvals\t%d\n", s.PendingApprovals)
	fmt.Fprintf(w, "enrollments\t%d\n", s.Enrollments)
	fmt.Fprintf(w, "certificates\t%d\n", s.Certificates)
	_ = w.Flush()
}

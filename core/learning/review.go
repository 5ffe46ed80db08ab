package learning

import (
	"github.com/volatiletech/null/v8"

	"github.com/hatag-tech/elearning/core"
)

// AddOrUpdateReview upserts the review of userID for the course.
// An edit keeps the original creation time and stamps UpdatedAt.
func (svc *Service) AddOrUpdateReview(userID, courseID string, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, core.NewValidationError(ErrInvalidRating, core.FieldError{Field: "rating", Error: ErrInvalidRating.Error()})
	}
	if _, err := svc.GetCourse(courseID); err != nil {
		return Review{}, err
	}

	now := core.Now()
	comment = core.CleanString(comment)

	var review Review
	svc.repos.Reviews.Mutate(func(rows []Review) []Review {
		for i, r := range rows {
			if r.UserID == userID && r.CourseID == courseID {
				r.Rating = rating
				r.Comment = comment
				r.UpdatedAt = null.TimeFrom(now)
				rows[i] = r
				review = r
				return rows
			}
		}
		review = Review{
			ID:        core.NewID("rev-"),
			UserID:    userID,
			CourseID:  courseID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: now,
		}
		return append(rows, review)
	})
	return review, nil
}

func (svc *Service) ReviewsForCourse(courseID string) []Review {
	return svc.repos.Reviews.Filter(byCourse[Review](courseID))
}

// AverageRating returns the mean review rating of the course, false when it has no reviews.
func (svc *Service) AverageRating(courseID string) (float64, bool) {
	reviews := svc.ReviewsForCourse(courseID)
	if len(reviews) == 0 {
		return 0, false
	}
	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	return mean(ratings), true
}

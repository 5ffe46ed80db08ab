package learning

import (
	"github.com/volatiletech/null/v8"

	"github.com/hatag-tech/elearning/core"
)

const defaultPassThreshold = 70

type (
	QuestionResult struct {
		Index         int    `json:"index"`
		Answer        int    `json:"answer"` // -1 when unanswered
		CorrectAnswer int    `json:"correct_answer"`
		Correct       bool   `json:"correct"`
		Explanation   string `json:"explanation,omitempty"`
	}

	QuizResult struct {
		Attempt   QuizAttempt      `json:"attempt"`
		Questions []QuestionResult `json:"questions"`
	}
)

func checkQuestions(questions []Question) error {
	for _, q := range questions {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return ErrInvalidAnswer
		}
	}
	return nil
}

func (svc *Service) AddQuiz(courseID string, nq NewQuiz) (Quiz, error) {
	if _, err := svc.GetCourse(courseID); err != nil {
		return Quiz{}, err
	}
	nq.Title = core.CleanString(nq.Title)
	if err := svc.validator.Struct(nq); err != nil {
		return Quiz{}, err
	}
	if err := checkQuestions(nq.Questions); err != nil {
		return Quiz{}, err
	}

	threshold := defaultPassThreshold
	if nq.PassThreshold != nil {
		threshold = *nq.PassThreshold
	}
	quiz := Quiz{
		ID:            core.NewID("quiz-"),
		CourseID:      courseID,
		Title:         nq.Title,
		Description:   nq.Description,
		PassThreshold: threshold,
		Questions:     nq.Questions,
		CreatedAt:     core.Now(),
	}
	svc.repos.Quizzes.Append(quiz)
	return quiz, nil
}

func (svc *Service) UpdateQuiz(quizID string, patch QuizPatch) (Quiz, error) {
	if err := svc.validator.Struct(patch); err != nil {
		return Quiz{}, err
	}
	if patch.Questions != nil {
		if err := checkQuestions(patch.Questions); err != nil {
			return Quiz{}, err
		}
	}

	var updated Quiz
	n := svc.repos.Quizzes.Update(func(q Quiz) bool { return q.ID == quizID }, func(q *Quiz) {
		if patch.Title != nil {
			q.Title = core.CleanString(*patch.Title)
		}
		if patch.Description != nil {
			q.Description = *patch.Description
		}
		if patch.PassThreshold != nil {
			q.PassThreshold = *patch.PassThreshold
		}
		if patch.Questions != nil {
			q.Questions = patch.Questions
		}
		q.UpdatedAt = null.TimeFrom(core.Now())
		updated = *q
	})
	if n == 0 {
		return Quiz{}, ErrQuizNotFound
	}
	return updated, nil
}

func (svc *Service) GetQuiz(quizID string) (Quiz, error) {
	quiz, ok := svc.repos.Quizzes.Find(func(q Quiz) bool { return q.ID == quizID })
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return quiz, nil
}

func (svc *Service) QuizzesForCourse(courseID string) []Quiz {
	return svc.repos.Quizzes.Filter(byCourse[Quiz](courseID))
}

// SaveQuizAttempt records an attempt; the percentage is derived from score and total.
func (svc *Service) SaveQuizAttempt(userID, courseID string, score, total int, passed bool) QuizAttempt {
	return svc.saveAttempt(QuizAttempt{
		UserID:   userID,
		CourseID: courseID,
		Score:    score,
		Total:    total,
		Passed:   passed,
	})
}

func (svc *Service) saveAttempt(attempt QuizAttempt) QuizAttempt {
	attempt.ID = core.NewID("attempt-")
	attempt.Percentage = percentage(float64(attempt.Score), float64(attempt.Total))
	attempt.CompletedAt = core.Now()
	svc.repos.QuizAttempts.Append(attempt)
	return attempt
}

// SubmitQuiz grades answers (question index -> option index) and records the attempt.
// A quiz passes when its percentage reaches the quiz pass threshold.
func (svc *Service) SubmitQuiz(userID, quizID string, answers map[int]int) (QuizResult, error) {
	quiz, err := svc.GetQuiz(quizID)
	if err != nil {
		return QuizResult{}, err
	}

	results := make([]QuestionResult, len(quiz.Questions))
	var score int
	for i, q := range quiz.Questions {
		answer, ok := answers[i]
		if !ok {
			answer = -1
		}
		correct := answer == q.CorrectAnswer
		if correct {
			score++
		}
		results[i] = QuestionResult{
			Index:         i,
			Answer:        answer,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
			Explanation:   q.Explanation,
		}
	}

	total := len(quiz.Questions)
	attempt := svc.saveAttempt(QuizAttempt{
		UserID:   userID,
		CourseID: quiz.CourseID,
		QuizID:   quiz.ID,
		Score:    score,
		Total:    total,
		Passed:   percentage(float64(score), float64(total)) >= quiz.PassThreshold,
	})
	return QuizResult{Attempt: attempt, Questions: results}, nil
}

func (svc *Service) QuizAttempts(userID, courseID string) []QuizAttempt {
	return svc.repos.QuizAttempts.Filter(func(q QuizAttempt) bool {
		return q.UserID == userID && q.CourseID == courseID
	})
}

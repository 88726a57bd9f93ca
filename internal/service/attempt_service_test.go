package service

import (
	"testing"
	"time"

	"github.com/lshigami/Quokka/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func timeRef(year, month, day, hour int) time.Time {
	return time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
}

type fakeAttemptRepo struct {
	attempts []model.Attempt
}

func (f *fakeAttemptRepo) CreateIfAbsent(attempt *model.Attempt) (*model.Attempt, bool, error) {
	for i := range f.attempts {
		if f.attempts[i].QuizID == attempt.QuizID && f.attempts[i].StudentID == attempt.StudentID {
			return &f.attempts[i], false, nil
		}
	}
	attempt.ID = uint(len(f.attempts) + 1)
	f.attempts = append(f.attempts, *attempt)
	return attempt, true, nil
}

func (f *fakeAttemptRepo) FindByIDWithQuiz(id uint) (*model.Attempt, error) {
	for i := range f.attempts {
		if f.attempts[i].ID == id {
			return &f.attempts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) FindAllByQuiz(quizID uint) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) FindByQuizAndStudent(quizID uint, studentID string) (*model.Attempt, error) {
	for i := range f.attempts {
		if f.attempts[i].QuizID == quizID && f.attempts[i].StudentID == studentID {
			return &f.attempts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) FindAllByStudent(studentID string) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func reviewQuiz() *model.Quiz {
	return &model.Quiz{
		ID: 7,
		Title: "Capitals",
		Questions: []model.Question{
			{
				ID:            1,
				QuizID:        7,
				Text:          "Capital of France?",
				Kind:          model.KindMultipleChoice,
				Options:       model.StringSlice{"Paris", "London"},
				CorrectAnswer: "Paris",
				Points:        2,
				Explanation:   "Paris has been the capital since 987.",
				OrderInQuiz:   1,
			},
			{
				ID:            2,
				QuizID:        7,
				Text:          "Is Sydney the capital of Australia?",
				Kind:          model.KindTrueFalse,
				CorrectAnswer: "False",
				Points:        1,
				OrderInQuiz:   2,
			},
		},
	}
}

func TestGetAttemptDetailsGradesEachQuestion(t *testing.T) {
	quiz := reviewQuiz()
	repo := &fakeAttemptRepo{attempts: []model.Attempt{{
		ID:               3,
		QuizID:           7,
		Quiz:             *quiz,
		StudentID:        "alice",
		Answers:          model.AnswerMap{1: "paris"},
		Score:            2,
		TotalPoints:      3,
		TimeTakenSeconds: 45,
		CompletedAt:      timeRef(2026, 8, 28, 9),
	}}}
	svc := NewAttemptService(repo, &fakeQuizRepo{created: quiz})

	detail, err := svc.GetAttemptDetails(3)
	require.NoError(t, err)

	assert.Equal(t, "Capitals", detail.QuizTitle)
	assert.Equal(t, 2, detail.Score)
	require.Len(t, detail.Questions, 2)

	first := detail.Questions[0]
	assert.True(t, first.Answered)
	assert.True(t, first.Correct, "case-insensitive match still earns the points")
	assert.Equal(t, 2, first.PointsAwarded)
	assert.Equal(t, "Paris", first.CorrectAnswer)
	assert.Equal(t, "paris", first.YourAnswer)

	second := detail.Questions[1]
	assert.False(t, second.Answered)
	assert.False(t, second.Correct)
	assert.Equal(t, 0, second.PointsAwarded)
}

func TestGetAttemptDetailsNotFound(t *testing.T) {
	svc := NewAttemptService(&fakeAttemptRepo{}, &fakeQuizRepo{})

	_, err := svc.GetAttemptDetails(99)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestGetMyAttempt(t *testing.T) {
	repo := &fakeAttemptRepo{attempts: []model.Attempt{{
		ID:          5,
		QuizID:      7,
		StudentID:   "alice",
		Score:       3,
		TotalPoints: 3,
		CompletedAt: timeRef(2026, 8, 28, 9),
	}}}
	svc := NewAttemptService(repo, &fakeQuizRepo{})

	summary, err := svc.GetMyAttempt(7, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(5), summary.ID)

	_, err = svc.GetMyAttempt(7, "bob")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestGetQuizStats(t *testing.T) {
	quiz := reviewQuiz()
	repo := &fakeAttemptRepo{attempts: []model.Attempt{
		{ID: 1, QuizID: 7, StudentID: "alice", Score: 3, TotalPoints: 3},
		{ID: 2, QuizID: 7, StudentID: "bob", Score: 1, TotalPoints: 3},
		{ID: 3, QuizID: 7, StudentID: "carol", Score: 2, TotalPoints: 3},
		{ID: 4, QuizID: 8, StudentID: "dave", Score: 9, TotalPoints: 9},
	}}
	svc := NewAttemptService(repo, &fakeQuizRepo{created: quiz})

	stats, err := svc.GetQuizStats(7)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.AttemptCount)
	assert.Equal(t, 3, stats.HighestScore)
	assert.Equal(t, 1, stats.LowestScore)
	assert.Equal(t, 3, stats.TotalPoints)
	assert.InDelta(t, 2.0, stats.AverageScore, 0.001)
}

func TestGetQuizStatsEmpty(t *testing.T) {
	quiz := reviewQuiz()
	svc := NewAttemptService(&fakeAttemptRepo{}, &fakeQuizRepo{created: quiz})

	stats, err := svc.GetQuizStats(7)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.AttemptCount)
	assert.Zero(t, stats.AverageScore)
}

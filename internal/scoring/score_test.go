package scoring

import (
	"testing"

	"github.com/lshigami/Quokka/internal/model"
	"github.com/stretchr/testify/assert"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Kind: model.KindMultipleChoice, Options: model.StringSlice{"Paris", "London", "Berlin"}, CorrectAnswer: "Paris", Points: 2},
		{ID: 2, Kind: model.KindTrueFalse, CorrectAnswer: "True", Points: 1},
		{ID: 3, Kind: model.KindShortAnswer, CorrectAnswer: "photosynthesis", Points: 3},
	}
}

func TestScore_CaseInsensitiveMatch(t *testing.T) {
	questions := sampleQuestions()

	score, total := Score(questions, model.AnswerMap{
		1: "paris",
		2: "False",
	})

	assert.Equal(t, 2, score)
	assert.Equal(t, 6, total)
}

func TestScore_UnansweredContributeOnlyToTotal(t *testing.T) {
	questions := sampleQuestions()

	score, total := Score(questions, model.AnswerMap{})

	assert.Equal(t, 0, score)
	assert.Equal(t, 6, total)
}

func TestScore_AllCorrect(t *testing.T) {
	questions := sampleQuestions()

	score, total := Score(questions, model.AnswerMap{
		1: "Paris",
		2: "true",
		3: "PHOTOSYNTHESIS",
	})

	assert.Equal(t, 6, score)
	assert.Equal(t, 6, total)
}

func TestScore_OrderIndependent(t *testing.T) {
	questions := sampleQuestions()
	answers := model.AnswerMap{1: "paris", 3: "photosynthesis"}

	score1, total1 := Score(questions, answers)

	reversed := []model.Question{questions[2], questions[1], questions[0]}
	score2, total2 := Score(reversed, answers)

	assert.Equal(t, score1, score2)
	assert.Equal(t, total1, total2)
}

func TestScore_NeverExceedsTotal(t *testing.T) {
	questions := sampleQuestions()

	for _, answers := range []model.AnswerMap{
		nil,
		{1: "Paris"},
		{1: "Paris", 2: "True", 3: "photosynthesis"},
		{1: "wrong", 2: "wrong", 3: "wrong"},
	} {
		score, total := Score(questions, answers)
		assert.GreaterOrEqual(t, score, 0)
		assert.GreaterOrEqual(t, total, score)
	}
}

func TestCorrect(t *testing.T) {
	q := sampleQuestions()[0]

	assert.True(t, Correct(q, model.AnswerMap{1: "PARIS"}))
	assert.False(t, Correct(q, model.AnswerMap{1: "London"}))
	assert.False(t, Correct(q, model.AnswerMap{}))
}

package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/Quokka/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory Store for driving the state machine without a
// database.
type memStore struct {
	mu          sync.Mutex
	quizzes     map[uint]*model.Quiz
	sessions    map[uint]*model.Session
	attempts    []*model.Attempt
	nextSession uint
	nextAttempt uint
	failWrites  bool
}

func newMemStore(quizzes ...*model.Quiz) *memStore {
	s := &memStore{
		quizzes:  make(map[uint]*model.Quiz),
		sessions: make(map[uint]*model.Session),
	}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *memStore) QuizByID(id uint) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (s *memStore) IncompleteSession(quizID uint, studentID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.QuizID == quizID && sess.StudentID == studentID && !sess.Completed {
			copied := *sess
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateSession(sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSession++
	sess.ID = s.nextSession
	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *memStore) UpdateSession(id uint, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("store unavailable")
	}
	sess, ok := s.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for name, value := range fields {
		switch name {
		case "answers":
			sess.Answers = value.(model.AnswerMap)
		case "flagged":
			sess.Flagged = value.(model.UintSlice)
		case "completed":
			sess.Completed = value.(bool)
		case "score":
			v := value.(int)
			sess.Score = &v
		case "total_points":
			v := value.(int)
			sess.TotalPoints = &v
		case "time_taken_seconds":
			v := value.(int)
			sess.TimeTakenSeconds = &v
		case "last_activity":
			sess.LastActivity = value.(time.Time)
		}
	}
	return nil
}

func (s *memStore) CreateAttemptIfAbsent(a *model.Attempt) (*model.Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return nil, false, errors.New("store unavailable")
	}
	for _, existing := range s.attempts {
		if existing.QuizID == a.QuizID && existing.StudentID == a.StudentID {
			return existing, false, nil
		}
	}
	s.nextAttempt++
	a.ID = s.nextAttempt
	copied := *a
	s.attempts = append(s.attempts, &copied)
	return &copied, true, nil
}

func (s *memStore) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

func (s *memStore) session(id uint) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.sessions[id]
}

func (s *memStore) setFailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

func capitalsQuiz() *model.Quiz {
	return &model.Quiz{
		ID:               1,
		Title:            "European Capitals",
		TimeLimitMinutes: 1,
		IsActive:         true,
		Questions: []model.Question{
			{ID: 1, QuizID: 1, Kind: model.KindMultipleChoice, Text: "Capital of France?",
				Options: model.StringSlice{"Paris", "London", "Berlin"}, CorrectAnswer: "Paris", Points: 2, OrderInQuiz: 1},
			{ID: 2, QuizID: 1, Kind: model.KindTrueFalse, Text: "Madrid is in Spain.",
				CorrectAnswer: "True", Points: 1, OrderInQuiz: 2},
		},
	}
}

type tickerHandle struct {
	mu     sync.Mutex
	ticker *ManualTicker
}

func (h *tickerHandle) factory(time.Duration) Ticker {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticker = NewManualTicker()
	return h.ticker
}

func (h *tickerHandle) tick() {
	h.mu.Lock()
	ticker := h.ticker
	h.mu.Unlock()
	ticker.Tick()
}

func startRunner(t *testing.T, store Store) (*Runner, *tickerHandle) {
	t.Helper()
	handle := &tickerHandle{}
	r, err := Start(1, "student-1", Config{Store: store, NewTicker: handle.factory})
	require.NoError(t, err)
	require.Equal(t, StateActive, r.State())
	return r, handle
}

func TestStart_CreatesSessionAndActivates(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)
	defer r.Close()

	snap := r.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.NotEmpty(t, snap.Token)
	assert.Equal(t, 60, snap.RemainingSeconds)
	assert.Empty(t, snap.Answers)
	assert.Empty(t, snap.Flagged)
}

func TestStart_QuizNotFound(t *testing.T) {
	store := newMemStore()
	r, err := Start(42, "student-1", Config{Store: store})
	assert.ErrorIs(t, err, ErrQuizNotFound)
	assert.Equal(t, StateError, r.State())
	assert.Equal(t, RedirectDashboard, r.Snapshot().Redirect)
	r.Close()
}

func TestStart_WindowValidation(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	notOpen := capitalsQuiz()
	notOpen.StartTime = &future
	r, err := Start(1, "student-1", Config{Store: newMemStore(notOpen)})
	assert.ErrorIs(t, err, ErrWindowNotOpen)
	assert.Equal(t, StateError, r.State())
	r.Close()

	closed := capitalsQuiz()
	closed.EndTime = &past
	r, err = Start(1, "student-1", Config{Store: newMemStore(closed)})
	assert.ErrorIs(t, err, ErrWindowClosed)
	r.Close()
}

func TestStart_RejectsMatchingKind(t *testing.T) {
	quiz := capitalsQuiz()
	quiz.Questions = append(quiz.Questions, model.Question{
		ID: 3, QuizID: 1, Kind: model.KindMatching, Text: "Match these", CorrectAnswer: "n/a", Points: 1, OrderInQuiz: 3,
	})

	r, err := Start(1, "student-1", Config{Store: newMemStore(quiz)})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	r.Close()
}

func TestStart_RejectsCorrectAnswerOutsideOptions(t *testing.T) {
	quiz := capitalsQuiz()
	quiz.Questions[0].CorrectAnswer = "Madrid"

	r, err := Start(1, "student-1", Config{Store: newMemStore(quiz)})
	assert.ErrorIs(t, err, ErrInvalidQuiz)
	r.Close()
}

func TestStart_ResumeRestoresAnswersFlagsAndClock(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	startedAt := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(&model.Session{
		Token:        "resume-token",
		QuizID:       1,
		StudentID:    "student-1",
		Answers:      model.AnswerMap{1: "Paris"},
		Flagged:      model.UintSlice{2},
		StartedAt:    startedAt,
		LastActivity: startedAt,
	}))

	handle := &tickerHandle{}
	now := startedAt.Add(10 * time.Second)
	r, err := Start(1, "student-1", Config{
		Store:     store,
		NewTicker: handle.factory,
		Now:       func() time.Time { return now },
	})
	require.NoError(t, err)
	defer r.Close()

	snap := r.Snapshot()
	assert.Equal(t, "resume-token", snap.Token)
	assert.Equal(t, model.AnswerMap{1: "Paris"}, snap.Answers)
	assert.Equal(t, []uint{2}, snap.Flagged)
	assert.Equal(t, 50, snap.RemainingSeconds)
}

func TestSetAnswer_OverwritesAndPersists(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)
	defer r.Close()

	require.NoError(t, r.SetAnswer(1, "London"))
	require.NoError(t, r.SetAnswer(1, "Paris"))

	assert.Equal(t, model.AnswerMap{1: "Paris"}, r.Snapshot().Answers)

	sessionID := uint(1)
	assert.Eventually(t, func() bool {
		return store.session(sessionID).Answers[1] == "Paris"
	}, time.Second, 5*time.Millisecond, "write-behind flush should persist the latest answer")

	assert.ErrorIs(t, r.SetAnswer(99, "x"), ErrUnknownQuestion)
}

func TestSetAnswer_RetriesAfterWriteFailure(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)
	defer r.Close()

	store.setFailWrites(true)
	require.NoError(t, r.SetAnswer(1, "Paris"))
	// In-memory state stays authoritative even though the write failed.
	assert.Equal(t, model.AnswerMap{1: "Paris"}, r.Snapshot().Answers)

	store.setFailWrites(false)
	require.NoError(t, r.SetAnswer(2, "True"))

	assert.Eventually(t, func() bool {
		sess := store.session(1)
		return sess.Answers[1] == "Paris" && sess.Answers[2] == "True"
	}, time.Second, 5*time.Millisecond)
}

func TestToggleFlag(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)
	defer r.Close()

	flagged, err := r.ToggleFlag(2)
	require.NoError(t, err)
	assert.True(t, flagged)
	assert.Equal(t, []uint{2}, r.Snapshot().Flagged)

	flagged, err = r.ToggleFlag(2)
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.Empty(t, r.Snapshot().Flagged)
}

func TestNavigate_Clamped(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)
	defer r.Close()

	idx, err := r.Navigate(1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = r.Navigate(-5)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = r.Navigate(99)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	// Navigation never mutates answers.
	assert.Empty(t, r.Snapshot().Answers)
}

func TestSubmit_ScoresAndSeals(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, handle := startRunner(t, store)

	require.NoError(t, r.SetAnswer(1, "paris"))
	require.NoError(t, r.SetAnswer(2, "False"))

	// Let some time pass before submitting.
	for i := 0; i < 5; i++ {
		handle.tick()
	}
	assert.Eventually(t, func() bool { return r.Snapshot().RemainingSeconds == 55 }, time.Second, time.Millisecond)

	result, err := r.Submit()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.TotalPoints)
	assert.Equal(t, 5, result.TimeTakenSeconds)
	assert.Equal(t, ReasonStudent, result.Reason)

	assert.Equal(t, StateCompleted, r.State())
	assert.Equal(t, RedirectReview, r.Snapshot().Redirect)
	assert.Equal(t, 1, store.attemptCount())

	sealed := store.session(1)
	assert.True(t, sealed.Completed)
	require.NotNil(t, sealed.Score)
	assert.Equal(t, 2, *sealed.Score)

	// Mutations after completion are rejected.
	assert.ErrorIs(t, r.SetAnswer(1, "Berlin"), ErrNotActive)
	_, err = r.ToggleFlag(1)
	assert.ErrorIs(t, err, ErrNotActive)
	_, err = r.Navigate(0)
	assert.ErrorIs(t, err, ErrNotActive)
	_, err = r.ReportSignal(SignalCopy)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestSubmit_IdempotentUnderRace(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Submit()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.attemptCount())
	assert.Equal(t, StateCompleted, r.State())
}

func TestSubmit_StaysSubmittingOnWriteFailureThenRetries(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)

	store.setFailWrites(true)
	_, err := r.Submit()
	require.Error(t, err)
	assert.Equal(t, StateSubmitting, r.State())
	assert.Equal(t, 0, store.attemptCount())

	store.setFailWrites(false)
	result, err := r.Submit()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, r.State())
	assert.Equal(t, 1, store.attemptCount())
	assert.Equal(t, ReasonStudent, result.Reason)
}

func TestTimerExpiry_AutoSubmitsWithFullTimeTaken(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, handle := startRunner(t, store)

	require.NoError(t, r.SetAnswer(1, "Paris"))

	for i := 0; i < 60; i++ {
		handle.tick()
		want := 60 - i - 1
		assert.Eventually(t, func() bool {
			snap := r.Snapshot()
			return snap.RemainingSeconds == want || snap.State == StateCompleted
		}, time.Second, time.Millisecond)
	}

	assert.Eventually(t, func() bool { return r.State() == StateCompleted }, time.Second, time.Millisecond)

	require.Equal(t, 1, store.attemptCount())
	attempt := store.attempts[0]
	assert.Equal(t, 60, attempt.TimeTakenSeconds)
	assert.Equal(t, 2, attempt.Score)

	result := r.Snapshot().Result
	require.NotNil(t, result)
	assert.Equal(t, ReasonTimer, result.Reason)
}

func TestViolationThreshold_ForcesCompletionWithoutSubmitCall(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	r, _ := startRunner(t, store)

	v, err := r.ReportSignal(SignalCopy)
	require.NoError(t, err)
	assert.True(t, v.Suppress)

	v, err = r.ReportSignal(SignalPaste)
	require.NoError(t, err)
	assert.False(t, v.Terminated)

	v, err = r.ReportSignal(SignalContextMenu)
	require.NoError(t, err)
	assert.True(t, v.Terminated)

	assert.Equal(t, StateCompleted, r.State())
	assert.Equal(t, 1, store.attemptCount())

	result := r.Snapshot().Result
	require.NotNil(t, result)
	assert.Equal(t, ReasonViolations, result.Reason)

	// Violations are transient and cleared once the session ends.
	assert.Empty(t, r.Snapshot().Violations)
}

func TestRegistry_OneRunnerPerPair(t *testing.T) {
	store := newMemStore(capitalsQuiz())
	reg := NewRegistry(Config{Store: store, NewTicker: (&tickerHandle{}).factory})

	r1, err := reg.StartOrResume(1, "student-1")
	require.NoError(t, err)
	r2, err := reg.StartOrResume(1, "student-1")
	require.NoError(t, err)
	assert.Same(t, r1, r2)

	byToken, ok := reg.ByToken(r1.Token())
	require.True(t, ok)
	assert.Same(t, r1, byToken)

	_, ok = reg.ByToken("missing")
	assert.False(t, ok)

	r1.Close()
}

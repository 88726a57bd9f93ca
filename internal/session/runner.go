package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Quokka/internal/model"
	"github.com/lshigami/Quokka/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type State string

const (
	StateInitializing State = "initializing"
	StateActive       State = "active"
	StateSubmitting   State = "submitting"
	StateCompleted    State = "completed"
	StateError        State = "error"
)

// SubmitReason records which path sealed the session.
type SubmitReason string

const (
	ReasonStudent    SubmitReason = "student"
	ReasonTimer      SubmitReason = "timer"
	ReasonViolations SubmitReason = "violations"
)

// Redirect hints for the hosting shell.
const (
	RedirectReview    = "review"
	RedirectDashboard = "dashboard"
)

// Config carries the collaborators a Runner is built with.
type Config struct {
	Store Store
	// NewTicker defaults to NewWallTicker.
	NewTicker TickerFactory
	// ViolationThreshold defaults to DefaultViolationThreshold.
	ViolationThreshold int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of a sealed session.
type Result struct {
	AttemptID        uint         `json:"attempt_id"`
	Score            int          `json:"score"`
	TotalPoints      int          `json:"total_points"`
	TimeTakenSeconds int          `json:"time_taken_seconds"`
	Reason           SubmitReason `json:"reason"`
}

// Snapshot is a read-only view of the runner for the API layer.
type Snapshot struct {
	Token            string
	State            State
	QuizID           uint
	StudentID        string
	CurrentIndex     int
	RemainingSeconds int
	Answers          model.AnswerMap
	Flagged          []uint
	Violations       []string
	ViolationCount   int
	Result           *Result
	Redirect         string
}

// snapshot is one write-behind unit for the flusher. A monotonically
// increasing sequence makes stale writes detectable; the channel holds only
// the newest pending snapshot so a delayed earlier write can never overwrite
// a later one.
type writeSnapshot struct {
	seq          uint64
	answers      model.AnswerMap
	flagged      model.UintSlice
	lastActivity time.Time
}

// Runner owns one student's live attempt: the answer map, the flag set, the
// countdown and the proctoring monitor. All mutations are serialized behind
// its mutex; the timer tick and monitor termination are the only
// asynchronous entry points and go through the same lock.
type Runner struct {
	store     Store
	newTicker TickerFactory
	threshold int
	now       func() time.Time

	mu           sync.Mutex
	state        State
	quiz         *model.Quiz
	questions    []model.Question
	questionIDs  map[uint]struct{}
	sess         *model.Session
	studentID    string
	answers      model.AnswerMap
	flags        map[uint]struct{}
	current      int
	limitSeconds int
	countdown    *Countdown
	monitor      *Monitor
	submitReason SubmitReason
	result       *Result
	redirect     string

	seq          uint64
	flushCh      chan writeSnapshot
	flushDone    chan struct{}
	flushStarted bool
	flushClosed  bool
}

// Start loads the quiz, validates it against the current time window,
// resumes the student's incomplete session or creates a fresh one, and
// transitions straight to Active with the countdown running and the monitor
// attached. A load or validation failure leaves the runner in the Error
// state and returns the cause.
func Start(quizID uint, studentID string, cfg Config) (*Runner, error) {
	r := &Runner{
		store:     cfg.Store,
		newTicker: cfg.NewTicker,
		threshold: cfg.ViolationThreshold,
		now:       cfg.Now,
		state:     StateInitializing,
		studentID: studentID,
		flushCh:   make(chan writeSnapshot, 1),
		flushDone: make(chan struct{}),
	}
	if r.newTicker == nil {
		r.newTicker = NewWallTicker
	}
	if r.now == nil {
		r.now = time.Now
	}

	if err := r.initialize(quizID); err != nil {
		r.mu.Lock()
		r.state = StateError
		r.redirect = RedirectDashboard
		r.mu.Unlock()
		return r, err
	}
	return r, nil
}

func (r *Runner) initialize(quizID uint) error {
	quiz, err := r.store.QuizByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("loading quiz %d: %w", quizID, err)
	}
	if err := ValidateQuiz(quiz); err != nil {
		return err
	}
	if err := checkWindow(quiz, r.now()); err != nil {
		return err
	}

	questions := make([]model.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderInQuiz < questions[j].OrderInQuiz
	})

	sess, err := r.store.IncompleteSession(quizID, r.studentID)
	if err != nil {
		return fmt.Errorf("looking up session for quiz %d: %w", quizID, err)
	}

	limitSeconds := quiz.TimeLimitMinutes * 60
	remaining := limitSeconds

	if sess == nil {
		now := r.now()
		sess = &model.Session{
			Token:        uuid.NewString(),
			QuizID:       quizID,
			StudentID:    r.studentID,
			Answers:      model.AnswerMap{},
			Flagged:      model.UintSlice{},
			StartedAt:    now,
			LastActivity: now,
		}
		if err := r.store.CreateSession(sess); err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		log.Info().Uint("quizID", quizID).Str("studentID", r.studentID).Str("token", sess.Token).Msg("Session created")
	} else {
		// Resume restores the answer map and flag set, and the clock picks
		// up where the wall clock says it should, not back at the full
		// limit.
		elapsed := int(r.now().Sub(sess.StartedAt).Seconds())
		remaining = limitSeconds - elapsed
		if remaining < 0 {
			remaining = 0
		}
		log.Info().Uint("quizID", quizID).Str("studentID", r.studentID).Int("remaining", remaining).Msg("Session resumed")
	}

	r.mu.Lock()
	r.quiz = quiz
	r.questions = questions
	r.questionIDs = make(map[uint]struct{}, len(questions))
	for _, q := range questions {
		r.questionIDs[q.ID] = struct{}{}
	}
	r.sess = sess
	r.limitSeconds = limitSeconds
	r.answers = model.AnswerMap{}
	for id, v := range sess.Answers {
		r.answers[id] = v
	}
	r.flags = make(map[uint]struct{}, len(sess.Flagged))
	for _, id := range sess.Flagged {
		r.flags[id] = struct{}{}
	}
	r.monitor = NewMonitor(r.threshold, func() { r.forceSubmit(ReasonViolations) })
	r.countdown = NewCountdown(remaining, r.newTicker, nil, func() { r.forceSubmit(ReasonTimer) })
	r.state = StateActive
	r.flushStarted = true
	r.mu.Unlock()

	go r.flush()
	r.countdown.Start()
	return nil
}

// ValidateQuiz rejects definitions the session can never run: missing
// questions, non-positive time limit or points, unsupported kinds (matching
// included), and multiple-choice questions whose correct answer is not one
// of the listed options.
func ValidateQuiz(quiz *model.Quiz) error {
	if !quiz.IsActive {
		return ErrQuizInactive
	}
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", ErrInvalidQuiz)
	}
	if quiz.TimeLimitMinutes <= 0 {
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidQuiz)
	}
	for _, q := range quiz.Questions {
		switch q.Kind {
		case model.KindMultipleChoice:
			if !containsFold(q.Options, q.CorrectAnswer) {
				return fmt.Errorf("%w: question %d correct answer is not among its options", ErrInvalidQuiz, q.ID)
			}
		case model.KindTrueFalse, model.KindShortAnswer:
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedKind, q.Kind)
		}
		if q.Points <= 0 {
			return fmt.Errorf("%w: question %d must have positive points", ErrInvalidQuiz, q.ID)
		}
	}
	return nil
}

func checkWindow(quiz *model.Quiz, now time.Time) error {
	if quiz.StartTime != nil && now.Before(*quiz.StartTime) {
		return ErrWindowNotOpen
	}
	if quiz.EndTime != nil && now.After(*quiz.EndTime) {
		return ErrWindowClosed
	}
	return nil
}

func containsFold(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

// SetAnswer overwrites the student's answer for a question. Repeated calls
// are safe; the whole answer map is persisted on each write.
func (r *Runner) SetAnswer(questionID uint, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return ErrNotActive
	}
	if _, ok := r.questionIDs[questionID]; !ok {
		return ErrUnknownQuestion
	}
	r.answers[questionID] = value
	r.enqueueWriteLocked()
	return nil
}

// ToggleFlag adds the question to the flagged set if absent, removes it if
// present.
func (r *Runner) ToggleFlag(questionID uint) (flagged bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return false, ErrNotActive
	}
	if _, ok := r.questionIDs[questionID]; !ok {
		return false, ErrUnknownQuestion
	}
	if _, ok := r.flags[questionID]; ok {
		delete(r.flags, questionID)
	} else {
		r.flags[questionID] = struct{}{}
		flagged = true
	}
	r.enqueueWriteLocked()
	return flagged, nil
}

// Navigate moves the current-question pointer, clamped to the question
// range. It never touches answers and is not persisted.
func (r *Runner) Navigate(index int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return 0, ErrNotActive
	}
	if index < 0 {
		index = 0
	}
	if max := len(r.questions) - 1; index > max {
		index = max
	}
	r.current = index
	return index, nil
}

// ReportSignal feeds one environment signal to the proctoring monitor.
func (r *Runner) ReportSignal(kind SignalKind) (Verdict, error) {
	r.mu.Lock()
	if r.state != StateActive {
		r.mu.Unlock()
		return Verdict{}, ErrNotActive
	}
	monitor := r.monitor
	r.mu.Unlock()

	// Reported outside the lock: the threshold callback re-enters the
	// runner through forceSubmit.
	return monitor.Report(kind)
}

// Submit seals the session on behalf of the student.
func (r *Runner) Submit() (*Result, error) {
	return r.submit(ReasonStudent)
}

func (r *Runner) forceSubmit(reason SubmitReason) {
	if _, err := r.submit(reason); err != nil {
		log.Error().Err(err).Str("reason", string(reason)).Msg("Forced submit failed; session stays in submitting until retried")
	}
}

// submit is the single sealing path for all three triggers. The state check
// under the lock makes it idempotent: a completed session returns its sealed
// result, a failed seal stays in Submitting and any later call retries it.
func (r *Runner) submit(reason SubmitReason) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateActive:
		r.state = StateSubmitting
		r.submitReason = reason
		r.countdown.Stop()
		r.stopFlusherLocked()
	case StateSubmitting:
		// Retry of a failed seal; the original trigger keeps the credit.
	case StateCompleted:
		return r.result, nil
	default:
		return nil, ErrNotActive
	}

	return r.sealLocked()
}

func (r *Runner) sealLocked() (*Result, error) {
	score, total := scoring.Score(r.questions, r.answers)
	timeTaken := r.limitSeconds - r.countdown.Remaining()
	now := r.now()

	answers := r.cloneAnswersLocked()
	flagged := r.flaggedSliceLocked()

	err := r.store.UpdateSession(r.sess.ID, map[string]interface{}{
		"answers":            answers,
		"flagged":            flagged,
		"completed":          true,
		"score":              score,
		"total_points":       total,
		"time_taken_seconds": timeTaken,
		"last_activity":      now,
	})
	if err != nil {
		log.Error().Err(err).Uint("sessionID", r.sess.ID).Msg("Failed to seal session")
		return nil, fmt.Errorf("sealing session: %w", err)
	}

	attempt := &model.Attempt{
		QuizID:           r.quiz.ID,
		StudentID:        r.studentID,
		SessionID:        r.sess.ID,
		Answers:          answers,
		Score:            score,
		TotalPoints:      total,
		TimeTakenSeconds: timeTaken,
		CompletedAt:      now,
	}
	persisted, created, err := r.store.CreateAttemptIfAbsent(attempt)
	if err != nil {
		log.Error().Err(err).Uint("quizID", r.quiz.ID).Msg("Failed to record attempt")
		return nil, fmt.Errorf("recording attempt: %w", err)
	}
	if !created {
		log.Warn().Uint("quizID", r.quiz.ID).Str("studentID", r.studentID).Msg("Attempt already recorded, duplicate submit suppressed")
	}

	r.state = StateCompleted
	r.redirect = RedirectReview
	r.monitor.Detach()
	r.result = &Result{
		AttemptID:        persisted.ID,
		Score:            score,
		TotalPoints:      total,
		TimeTakenSeconds: timeTaken,
		Reason:           r.submitReason,
	}
	log.Info().Uint("attemptID", persisted.ID).Int("score", score).Int("total", total).Str("reason", string(r.submitReason)).Msg("Session completed")
	return r.result, nil
}

// enqueueWriteLocked hands the current in-memory state to the flusher. The
// channel keeps only the newest snapshot: a pending older one is dropped, so
// writes stay last-write-wins while the UI never waits on the store.
func (r *Runner) enqueueWriteLocked() {
	now := r.now()
	r.sess.LastActivity = now
	r.seq++
	snap := writeSnapshot{
		seq:          r.seq,
		answers:      r.cloneAnswersLocked(),
		flagged:      r.flaggedSliceLocked(),
		lastActivity: now,
	}
	for {
		select {
		case r.flushCh <- snap:
			return
		default:
			select {
			case <-r.flushCh:
			default:
			}
		}
	}
}

func (r *Runner) flush() {
	for snap := range r.flushCh {
		err := r.store.UpdateSession(r.sess.ID, map[string]interface{}{
			"answers":       snap.answers,
			"flagged":       snap.flagged,
			"last_activity": snap.lastActivity,
		})
		if err != nil {
			// Best effort: in-memory state stays authoritative and the next
			// mutation carries the full map again.
			log.Warn().Err(err).Uint("sessionID", r.sess.ID).Uint64("seq", snap.seq).Msg("Session write failed, will retry on next mutation")
		}
	}
	close(r.flushDone)
}

// stopFlusherLocked closes the write-behind queue and waits for any in-flight
// write, so nothing can land after the seal.
func (r *Runner) stopFlusherLocked() {
	if r.flushClosed {
		return
	}
	r.flushClosed = true
	close(r.flushCh)
	if r.flushStarted {
		<-r.flushDone
	}
}

// Close tears down the timer, the monitor and the flusher without sealing.
// The registry uses it when discarding an errored runner.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countdown != nil {
		r.countdown.Stop()
	}
	if r.monitor != nil {
		r.monitor.Detach()
	}
	r.stopFlusherLocked()
}

func (r *Runner) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ""
	}
	return r.sess.Token
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Snapshot returns a consistent copy of the runner for rendering.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		State:        r.state,
		StudentID:    r.studentID,
		CurrentIndex: r.current,
		Redirect:     r.redirect,
		Result:       r.result,
	}
	if r.quiz != nil {
		snap.QuizID = r.quiz.ID
	}
	if r.sess != nil {
		snap.Token = r.sess.Token
	}
	if r.countdown != nil {
		snap.RemainingSeconds = r.countdown.Remaining()
	}
	snap.Answers = r.cloneAnswersLocked()
	snap.Flagged = r.flaggedSliceLocked()
	if r.monitor != nil {
		snap.Violations = r.monitor.Violations()
		snap.ViolationCount = r.monitor.Count()
	}
	return snap
}

func (r *Runner) cloneAnswersLocked() model.AnswerMap {
	out := make(model.AnswerMap, len(r.answers))
	for id, v := range r.answers {
		out[id] = v
	}
	return out
}

func (r *Runner) flaggedSliceLocked() model.UintSlice {
	out := make(model.UintSlice, 0, len(r.flags))
	for id := range r.flags {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

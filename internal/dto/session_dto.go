package dto

// AnswerUpdateDTO sets the student's answer for one question.
type AnswerUpdateDTO struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// FlagUpdateDTO toggles the review flag on one question.
type FlagUpdateDTO struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

// PositionUpdateDTO moves the current-question pointer.
type PositionUpdateDTO struct {
	Index int `json:"index"`
}

// SignalEventDTO reports one proctoring signal observed by the client.
type SignalEventDTO struct {
	Kind string `json:"kind" binding:"required"`
}

// SignalVerdictDTO tells the client how to react to a reported signal.
type SignalVerdictDTO struct {
	Suppress       bool     `json:"suppress"`
	Message        string   `json:"message"`
	ViolationCount int      `json:"violation_count"`
	Terminated     bool     `json:"terminated"`
	Warnings       []string `json:"warnings"`
	// Redirect is set once the session has been force-completed.
	Redirect string `json:"redirect,omitempty"`
}

// FlagStateDTO is the response to a flag toggle.
type FlagStateDTO struct {
	QuestionID uint   `json:"question_id"`
	Flagged    bool   `json:"flagged"`
	Flags      []uint `json:"flagged_questions"`
}

// PositionStateDTO is the response to a navigation request.
type PositionStateDTO struct {
	Index int `json:"index"`
}

// SessionStateDTO is the live view of a running (or finished) session.
type SessionStateDTO struct {
	Token            string          `json:"token"`
	State            string          `json:"state"`
	QuizID           uint            `json:"quiz_id"`
	StudentID        string          `json:"student_id"`
	CurrentIndex     int             `json:"current_index"`
	RemainingSeconds int             `json:"remaining_seconds"`
	Answers          map[uint]string `json:"answers"`
	Flagged          []uint          `json:"flagged_questions"`
	Warnings         []string        `json:"warnings"`
	ViolationCount   int             `json:"violation_count"`
	Result           *SubmitResultDTO `json:"result,omitempty"`
	Redirect         string          `json:"redirect,omitempty"`
}

// SubmitResultDTO is the sealed outcome of a session.
type SubmitResultDTO struct {
	AttemptID        uint   `json:"attempt_id"`
	Score            int    `json:"score"`
	TotalPoints      int    `json:"total_points"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
	Reason           string `json:"reason"`
	Redirect         string `json:"redirect"`
}

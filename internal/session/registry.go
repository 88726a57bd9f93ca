package session

import "sync"

type ownerKey struct {
	quizID    uint
	studentID string
}

// Registry keeps at most one live runner per (quiz, student) pair, which is
// what makes the resume-vs-create check in Start meaningful: a second tab
// hitting the API lands on the same runner instead of racing a new one.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	byToken map[string]*Runner
	byOwner map[ownerKey]*Runner
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:     cfg,
		byToken: make(map[string]*Runner),
		byOwner: make(map[ownerKey]*Runner),
	}
}

// StartOrResume returns the live runner for the pair, starting one (and
// resuming any persisted incomplete session) if needed. Starts are
// serialized so two concurrent requests cannot create two sessions.
func (g *Registry) StartOrResume(quizID uint, studentID string) (*Runner, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := ownerKey{quizID: quizID, studentID: studentID}
	if r, ok := g.byOwner[key]; ok {
		switch r.State() {
		case StateActive, StateSubmitting:
			return r, nil
		}
		delete(g.byOwner, key)
		delete(g.byToken, r.Token())
	}

	r, err := Start(quizID, studentID, g.cfg)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return nil, err
	}
	g.byOwner[key] = r
	g.byToken[r.Token()] = r
	return r, nil
}

// ByToken looks up a runner by its session token.
func (g *Registry) ByToken(token string) (*Runner, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.byToken[token]
	return r, ok
}

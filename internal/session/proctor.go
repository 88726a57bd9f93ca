package session

import (
	"fmt"
	"sync"
)

// SignalKind identifies an environment signal reported by the quiz-taking
// client. The client observes the browser (focus, visibility, clipboard,
// keyboard); the monitor owns the violation accounting.
type SignalKind string

const (
	SignalFullscreenExit SignalKind = "fullscreen-exit"
	SignalTabHidden      SignalKind = "tab-hidden"
	SignalWindowBlur     SignalKind = "window-blur"
	SignalCopy           SignalKind = "copy"
	SignalPaste          SignalKind = "paste"
	SignalContextMenu    SignalKind = "context-menu"
	SignalPrintScreen    SignalKind = "print-screen"
	SignalShortcut       SignalKind = "blocked-shortcut"
)

// DefaultViolationThreshold is the number of violations that terminates a
// session.
const DefaultViolationThreshold = 3

var signalMessages = map[SignalKind]string{
	SignalFullscreenExit: "Fullscreen mode is required for this quiz",
	SignalTabHidden:      "Tab switching is not allowed during the quiz",
	SignalWindowBlur:     "Please stay focused on the quiz window",
	SignalCopy:           "Copying is disabled during the quiz",
	SignalPaste:          "Pasting is disabled during the quiz",
	SignalContextMenu:    "Right-click is disabled during the quiz",
	SignalPrintScreen:    "Screenshots are not allowed during the quiz",
	SignalShortcut:       "Keyboard shortcuts are disabled during the quiz",
}

// Signals whose default action the client must suppress, not just report.
var suppressedSignals = map[SignalKind]bool{
	SignalCopy:        true,
	SignalPaste:       true,
	SignalContextMenu: true,
	SignalPrintScreen: true,
	SignalShortcut:    true,
}

// Verdict is the monitor's response to a reported signal.
type Verdict struct {
	// Suppress tells the client to prevent the default action.
	Suppress bool `json:"suppress"`
	// Message is the numbered warning shown to the student.
	Message string `json:"message"`
	// Count is the running violation count after this signal.
	Count int `json:"count"`
	// Terminated is set once the threshold has been reached.
	Terminated bool `json:"terminated"`
}

// Monitor translates environment signals into a single violation stream.
// Reaching the threshold fires onTerminate exactly once; further violations
// keep being counted but never re-fire it. Violations are transient: they
// live in memory only and are cleared on Detach.
type Monitor struct {
	mu          sync.Mutex
	threshold   int
	count       int
	violations  []string
	terminated  bool
	detached    bool
	onTerminate func()
}

func NewMonitor(threshold int, onTerminate func()) *Monitor {
	if threshold <= 0 {
		threshold = DefaultViolationThreshold
	}
	return &Monitor{threshold: threshold, onTerminate: onTerminate}
}

// Report records one violation for the given signal kind and returns the
// verdict the client acts on.
func (m *Monitor) Report(kind SignalKind) (Verdict, error) {
	message, known := signalMessages[kind]
	if !known {
		return Verdict{}, fmt.Errorf("%w: %q", ErrUnknownSignal, kind)
	}

	m.mu.Lock()
	if m.detached {
		m.mu.Unlock()
		return Verdict{}, ErrDetached
	}

	m.count++
	numbered := fmt.Sprintf("%d. %s", m.count, message)
	m.violations = append(m.violations, numbered)

	verdict := Verdict{
		Suppress: suppressedSignals[kind],
		Message:  numbered,
		Count:    m.count,
	}

	fire := false
	if m.count >= m.threshold && !m.terminated {
		m.terminated = true
		fire = true
	}
	verdict.Terminated = m.terminated
	onTerminate := m.onTerminate
	m.mu.Unlock()

	if fire && onTerminate != nil {
		onTerminate()
	}
	return verdict, nil
}

// Violations returns the warning messages, most recent last.
func (m *Monitor) Violations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.violations))
	copy(out, m.violations)
	return out
}

func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Detach stops all accounting and clears the violation list. Safe to call
// more than once; a detached monitor rejects further reports.
func (m *Monitor) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detached = true
	m.violations = nil
}

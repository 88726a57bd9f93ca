package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_ThresholdFiresTerminateExactlyOnce(t *testing.T) {
	terminations := 0
	m := NewMonitor(3, func() { terminations++ })

	v, err := m.Report(SignalCopy)
	require.NoError(t, err)
	assert.False(t, v.Terminated)
	assert.Equal(t, 1, v.Count)

	v, err = m.Report(SignalTabHidden)
	require.NoError(t, err)
	assert.False(t, v.Terminated)

	v, err = m.Report(SignalWindowBlur)
	require.NoError(t, err)
	assert.True(t, v.Terminated)
	assert.Equal(t, 1, terminations)

	// A 4th violation is still counted but must not re-fire.
	v, err = m.Report(SignalPaste)
	require.NoError(t, err)
	assert.True(t, v.Terminated)
	assert.Equal(t, 4, v.Count)
	assert.Equal(t, 1, terminations)
}

func TestMonitor_SuppressionVerdicts(t *testing.T) {
	m := NewMonitor(100, nil)

	suppressed := []SignalKind{SignalCopy, SignalPaste, SignalContextMenu, SignalPrintScreen, SignalShortcut}
	for _, kind := range suppressed {
		v, err := m.Report(kind)
		require.NoError(t, err)
		assert.True(t, v.Suppress, "signal %s must be suppressed", kind)
	}

	observeOnly := []SignalKind{SignalFullscreenExit, SignalTabHidden, SignalWindowBlur}
	for _, kind := range observeOnly {
		v, err := m.Report(kind)
		require.NoError(t, err)
		assert.False(t, v.Suppress, "signal %s must not be suppressed", kind)
	}
}

func TestMonitor_NumberedMessagesMostRecentLast(t *testing.T) {
	m := NewMonitor(100, nil)

	_, err := m.Report(SignalCopy)
	require.NoError(t, err)
	_, err = m.Report(SignalPaste)
	require.NoError(t, err)

	violations := m.Violations()
	require.Len(t, violations, 2)
	assert.Equal(t, "1. Copying is disabled during the quiz", violations[0])
	assert.Equal(t, "2. Pasting is disabled during the quiz", violations[1])
	assert.Equal(t, 2, m.Count())
}

func TestMonitor_UnknownSignal(t *testing.T) {
	m := NewMonitor(3, nil)

	_, err := m.Report(SignalKind("telepathy"))
	assert.ErrorIs(t, err, ErrUnknownSignal)
	assert.Equal(t, 0, m.Count())
}

func TestMonitor_DetachStopsAccountingAndClearsViolations(t *testing.T) {
	terminations := 0
	m := NewMonitor(2, func() { terminations++ })

	_, err := m.Report(SignalCopy)
	require.NoError(t, err)

	m.Detach()
	m.Detach() // idempotent

	assert.Empty(t, m.Violations())

	_, err = m.Report(SignalCopy)
	assert.ErrorIs(t, err, ErrDetached)
	assert.Equal(t, 0, terminations)
}

func TestMonitor_DefaultThreshold(t *testing.T) {
	terminations := 0
	m := NewMonitor(0, func() { terminations++ })

	for i := 0; i < DefaultViolationThreshold; i++ {
		_, err := m.Report(SignalWindowBlur)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, terminations)
}

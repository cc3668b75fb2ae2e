// Package indicator owns the notification-area icon: it swaps the icon when the
// confirmed language changes and keeps exactly one live icon handle.
package indicator

import (
	"errors"
	"log/slog"
	"sync"
	"unicode/utf16"

	"langtray/internal/iconres"
	"langtray/internal/langid"
)

const (
	// MaxTooltipLen is the notification-area tooltip capacity in UTF-16 units,
	// excluding the terminating NUL.
	MaxTooltipLen = 127
	// DefaultTooltip is shown when the language has no known name.
	DefaultTooltip = "Language tray"
)

// ErrClosed is returned by operations on a closed Manager.
var ErrClosed = errors.New("indicator closed")

// StatusArea is the host surface showing the icon.
type StatusArea interface {
	Add(icon *iconres.Icon, tooltip string) error
	Modify(icon *iconres.Icon, tooltip string) error
	Remove() error
}

// Resolver supplies icons. Resolve never returns nil.
type Resolver interface {
	Resolve(id langid.ID) *iconres.Icon
	Fallback() *iconres.Icon
}

// Describer names a language for the tooltip; "" means unknown.
type Describer func(id langid.ID) string

// Snapshot is a read-only view of the indicator state.
type Snapshot struct {
	Language  langid.ID
	Source    string
	Tooltip   string
	Published bool
}

// Manager is the single owner of the current icon handle.
type Manager struct {
	area     StatusArea
	resolver Resolver
	describe Describer

	mu        sync.Mutex
	current   *iconres.Icon
	last      langid.ID
	tooltip   string
	published bool
	closed    bool
}

// New creates a manager. describe may be nil.
func New(area StatusArea, resolver Resolver, describe Describer) *Manager {
	return &Manager{
		area:     area,
		resolver: resolver,
		describe: describe,
		tooltip:  DefaultTooltip,
	}
}

// UpdateIfChanged resolves and shows the icon for id unless id is unknown or
// already shown. It reports whether the icon was swapped.
func (m *Manager) UpdateIfChanged(id langid.ID) bool {
	if id.IsUnknown() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	if id == m.last && m.current != nil {
		return false
	}
	return m.swapLocked(id)
}

// Refresh re-resolves the last known language, e.g. after icon files changed.
func (m *Manager) Refresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	return m.swapLocked(m.last)
}

func (m *Manager) swapLocked(id langid.ID) bool {
	icon := m.resolver.Resolve(id)
	if icon == nil {
		slog.Warn("[indicator] resolver returned no icon", "lang", id.String())
		return false
	}

	old := m.current
	m.current = icon
	m.last = id
	m.tooltip = m.tooltipFor(id)

	if m.published {
		if err := m.area.Modify(icon, m.tooltip); err != nil {
			slog.Warn("[indicator] status area modify failed", "error", err)
		}
	}
	if old != nil && old != icon {
		old.Release()
	}
	slog.Info("[indicator] icon updated", "lang", id.String(), "source", icon.Source())
	return true
}

func (m *Manager) tooltipFor(id langid.ID) string {
	name := ""
	if m.describe != nil && !id.IsUnknown() {
		name = m.describe(id)
	}
	if name == "" {
		name = DefaultTooltip
	}
	return TruncateUTF16(name, MaxTooltipLen)
}

// Publish adds the icon to the status area. It is also used after the host
// was recreated. Before any resolution the builtin icon is shown.
func (m *Manager) Publish() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.current == nil {
		m.current = m.resolver.Fallback()
	}
	if err := m.area.Add(m.current, m.tooltip); err != nil {
		m.published = false
		return err
	}
	m.published = true
	return nil
}

// Withdraw removes the icon from the status area but keeps the handle.
func (m *Manager) Withdraw() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withdrawLocked()
}

func (m *Manager) withdrawLocked() error {
	if !m.published {
		return nil
	}
	m.published = false
	return m.area.Remove()
}

// Close withdraws the icon and releases the handle. It is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if err := m.withdrawLocked(); err != nil {
		slog.Warn("[indicator] status area remove failed", "error", err)
	}
	m.current.Release()
	m.current = nil
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Language:  m.last,
		Source:    m.current.Source(),
		Tooltip:   m.tooltip,
		Published: m.published,
	}
}

// TruncateUTF16 cuts s to at most max UTF-16 code units without splitting a
// surrogate pair.
func TruncateUTF16(s string, max int) string {
	if max <= 0 {
		return ""
	}
	units := 0
	for i, r := range s {
		n := 1
		if utf16.RuneLen(r) == 2 {
			n = 2
		}
		if units+n > max {
			return s[:i]
		}
		units += n
	}
	return s
}

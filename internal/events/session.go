package events

import "github.com/google/uuid"

// Session is the editing-session state every workspace mutation consults:
// the open undo group, the disabled counter and the record-undo flag. One
// Session may be shared by a main workspace and its flyout.
//
// Every mutator returns a restore function. Callers defer it, so the previous
// state comes back on every exit path, panics included.
type Session struct {
	group      string
	disabled   int
	suppressed int
}

// NewSession returns a session with events enabled, undo recording on and no
// open group.
func NewSession() *Session {
	return &Session{}
}

// NewGroupID returns a fresh undo-group identifier.
func NewGroupID() string {
	return uuid.NewString()
}

// Group returns the currently open group, or "" when none is open.
func (s *Session) Group() string { return s.group }

// BeginGroup opens a new group unless one is already open. The returned
// function closes it again; when a group was already open it does nothing,
// so nested operations inherit the outer gesture's group.
func (s *Session) BeginGroup() (end func()) {
	if s.group != "" {
		return func() {}
	}
	s.group = NewGroupID()
	return once(func() { s.group = "" })
}

// SetGroup forces the current group and returns a function restoring the
// previous one.
func (s *Session) SetGroup(id string) (restore func()) {
	prev := s.group
	s.group = id
	return once(func() { s.group = prev })
}

// WithGroup runs fn inside a group, opening one if needed.
func (s *Session) WithGroup(fn func() error) error {
	end := s.BeginGroup()
	defer end()
	return fn()
}

// Enabled reports whether events are currently fired.
func (s *Session) Enabled() bool { return s.disabled == 0 }

// Disable stops events from firing until the returned function is called.
// Calls nest.
func (s *Session) Disable() (restore func()) {
	s.disabled++
	return once(func() { s.disabled-- })
}

// RecordUndo reports whether newly created events go onto the undo stack.
func (s *Session) RecordUndo() bool { return s.suppressed == 0 }

// SuspendUndo stops undo recording until the returned function is called.
// Used while replaying history so the replay does not record itself.
func (s *Session) SuspendUndo() (restore func()) {
	s.suppressed++
	return once(func() { s.suppressed-- })
}

func once(fn func()) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		fn()
	}
}

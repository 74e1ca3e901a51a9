// Package control drives configuration transitions from a watched
// state file.
//
// The state file is the operational switch: writing the word "start"
// loads the document from the configured source and applies it;
// writing "stop" shuts the running configuration down. Words are
// case-insensitive and surrounding whitespace is ignored. Writing the
// current state again is a no-op, and anything else is an error.
//
// The file is watched through fsnotify with a short debounce so that
// shell redirections and editors producing several events per logical
// write trigger a single read. Transitions are serialized; a word
// observed while an apply is under way waits for it to finish, and a
// failed apply leaves the configuration stopped.
//
// A Controller is also a programmatic surface: Start and Stop perform
// the same transitions for boot-time autostart and signal-driven
// shutdown, and OnCycle reports every finished transition to
// observers such as the audit trail.
package control

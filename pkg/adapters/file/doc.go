// Package file stores wizard sessions as JSON files, one per session.
// It suits the terminal runner, where a session can be resumed across runs.
package file

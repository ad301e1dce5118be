// Package watch re-runs work when a script file changes.
//
// FileWatcher uses fsnotify on the file's directory and falls back to
// polling the file's size and modification time. Bursts of events are
// debounced into one callback. Loop drives the `testafy watch` command.
package watch

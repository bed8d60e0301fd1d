// Package progressui renders tool progress for a person watching the run.
//
// A Sink opens one Display per tool invocation. The terminal sink draws a
// progress bar on stderr, the log sink writes debug lines for unattended
// runs, and the nop sink discards everything.
package progressui

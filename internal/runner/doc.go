// Package runner launches one external tool, feeds its merged output through
// the progress parser, and drives a progress display until the tool exits or
// the caller stops watching.
//
// Cancellation does not kill the tool. The child runs in its own process
// group, its output is drained in the background, and Run reports
// StillRunningAtCancellation so a later invocation can find it again by name.
// A fatal ripper message is the one case where the child is killed.
package runner

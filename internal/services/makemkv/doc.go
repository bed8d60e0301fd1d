// Package makemkv builds makemkvcon command lines and reads its drive
// inventory report. The rip and backup commands themselves are executed by
// the runner package, which owns progress parsing.
package makemkv

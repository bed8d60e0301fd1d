// Package profile turns the operator's menu choice or --profile flag into an
// Action: run a job, kill running tools, clean scratch, finish an aborted rip
// or do nothing. The command layer switches on Action.Kind.
package profile

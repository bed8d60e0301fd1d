// Package main hosts the ripline CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, takes the single-instance
// lock and hands the operator's choice to the internal packages: profile
// resolution, the pipeline orchestrator, scratch maintenance and process
// supervision. Every pipeline outcome is reported from one place
// (dispatch.go) so each error kind yields exactly one message, one
// notification and one log line.
package main

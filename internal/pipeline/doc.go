// Package pipeline sequences the external ripper, encoder and ISO builder
// for one job and publishes the result into the destination tree.
//
// A Job is built once from the loaded configuration and a profile and is
// passed by value afterwards. The Orchestrator runs exactly one tool at a
// time through the runner package, selects staged files with the staging
// package between tools and copies the final file with fileutil. A run that
// is cancelled while a tool is still working returns services.ErrBackgrounded
// and leaves the scratch directory alone so the tool can finish on its own.
package pipeline

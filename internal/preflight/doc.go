// Package preflight provides readiness checks for the external tools and
// filesystem paths that ripline depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before starting a job and logs every
//     failed check as a warning. Nothing here blocks a run; the pipeline
//     reports the real failure if a tool is missing.
//   - The status command renders the full result list.
//
// Optional checks are gated by their config toggle.
package preflight

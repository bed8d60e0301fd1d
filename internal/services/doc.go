// Package services defines shared utilities consumed by the pipeline stages
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and profile names for
//     logging.
//   - Structured error markers plus the Wrap helper and Classify, which
//     translate failures into the user-facing kinds reported at the run
//     boundary.
//
// Subpackages wrap the individual external tools (ripper, encoder, ISO
// builder) and the media library integration.
package services

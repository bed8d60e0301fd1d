// Package staging picks the file a run publishes from the scratch directory,
// derives its display title and destination, and guards deletions in scratch
// against tools that may still be writing there.
package staging

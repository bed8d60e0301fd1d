// Package jellyfin asks a Jellyfin server to rescan its libraries after a
// run published new files.
package jellyfin

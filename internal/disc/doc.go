// Package disc talks to the optical drive itself: it ejects media, reports
// tray status, recognizes generic volume labels, and on Linux watches udev
// for disc insertions.
package disc

// Package procsup finds and force-terminates running external tools by
// executable name.
//
// Supervision is best-effort: when the platform's process listing utility is
// missing or fails, lookups report "not running" and log a diagnostic rather
// than failing the caller.
package procsup

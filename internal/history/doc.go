// Package history keeps a SQLite ledger of pipeline runs for the history
// command. Entries are informational; nothing reads them back to resume work.
package history

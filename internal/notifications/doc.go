// Package notifications delivers run events to ntfy.
//
// NewService publishes to the topic configured in config.toml and degrades to
// a no-op when no topic is set. Callers publish an Event with a Payload; the
// service owns the wording, tags and priority of each message.
package notifications

package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ripline/internal/config"
)

const userAgent = "ripline/1.0"

// Event identifies a notification type.
type Event string

const (
	EventRunStarted          Event = "run_started"
	EventRunCompleted        Event = "run_completed"
	EventRunFailed           Event = "run_failed"
	EventRunBackgrounded     Event = "run_backgrounded"
	EventScratchCleaned      Event = "scratch_cleaned"
	EventProcessesKilled     Event = "processes_killed"
	EventAbortedRipCompleted Event = "aborted_rip_completed"
	EventTest                Event = "test"
)

// Payload carries the event's values. Keys are documented per event in
// format.
type Payload map[string]any

func (p Payload) str(key string) string {
	if p == nil {
		return ""
	}
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

// format renders an event. Unknown events are dropped.
func format(event Event, p Payload) (message, bool) {
	profile := p.str("profile")
	switch event {
	case EventRunStarted:
		return message{
			title: "Ripline - Started",
			body:  fmt.Sprintf("▶️ Started %s", fallback(profile, "run")),
			tags:  []string{"ripline", "run", "started"},
		}, true
	case EventRunCompleted:
		body := fmt.Sprintf("✅ %s finished: %s", fallback(profile, "Run"), fallback(p.str("title"), "untitled"))
		if file := p.str("file"); file != "" {
			body += "\nFile: " + file
		}
		return message{
			title: "Ripline - Complete",
			body:  body,
			tags:  []string{"ripline", "run", "completed"},
		}, true
	case EventRunFailed:
		body := fmt.Sprintf("❌ %s failed: %s", fallback(profile, "Run"), fallback(p.str("error"), "unknown error"))
		if last := p.str("lastMessage"); last != "" {
			body += "\nLast message: " + last
		}
		tags := []string{"ripline", "error"}
		if kind := p.str("kind"); kind != "" {
			tags = append(tags, kind)
		}
		return message{
			title:    "Ripline - Error",
			body:     body,
			tags:     tags,
			priority: "high",
		}, true
	case EventRunBackgrounded:
		body := fmt.Sprintf("⏸️ %s continues in the background", fallback(p.str("tool"), "the tool"))
		if pid := p.str("pid"); pid != "" {
			body += fmt.Sprintf(" (pid %s)", pid)
		}
		return message{
			title: "Ripline - Backgrounded",
			body:  body,
			tags:  []string{"ripline", "run", "backgrounded"},
		}, true
	case EventScratchCleaned:
		return message{
			title: "Ripline - Scratch Cleared",
			body:  fmt.Sprintf("🧹 Scratch cleared: %s", p.str("path")),
			tags:  []string{"ripline", "scratch", "cleaned"},
		}, true
	case EventProcessesKilled:
		return message{
			title: "Ripline - Processes Stopped",
			body:  fmt.Sprintf("🛑 Stopped: %s", fallback(p.str("processes"), "nothing")),
			tags:  []string{"ripline", "process", "killed"},
		}, true
	case EventAbortedRipCompleted:
		return message{
			title: "Ripline - Aborted Rip Recovered",
			body:  fmt.Sprintf("💿 Recovered aborted rip: %s", fallback(p.str("title"), "untitled")),
			tags:  []string{"ripline", "rip", "recovered"},
		}, true
	case EventTest:
		return message{
			title:    "Ripline - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"ripline", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripline/internal/config"
	"ripline/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"title": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "run started",
			event:         notifications.EventRunStarted,
			payload:       notifications.Payload{"profile": "Rip only"},
			expectTitle:   "Ripline - Started",
			expectMessage: "▶️ Started Rip only",
			expectTags:    "ripline,run,started",
		},
		{
			name:  "run completed",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"profile": "Movie 1080p",
				"title":   "Blade Runner",
				"file":    "/library/Blade Runner/Blade Runner.mkv",
			},
			expectTitle:   "Ripline - Complete",
			expectMessage: "✅ Movie 1080p finished: Blade Runner\nFile: /library/Blade Runner/Blade Runner.mkv",
			expectTags:    "ripline,run,completed",
		},
		{
			name:  "run failed",
			event: notifications.EventRunFailed,
			payload: notifications.Payload{
				"profile":     "Rip only",
				"kind":        "medium_error",
				"error":       "the disc could not be read",
				"lastMessage": "MEDIUM ERROR: disc unreadable",
			},
			expectTitle:    "Ripline - Error",
			expectMessage:  "❌ Rip only failed: the disc could not be read\nLast message: MEDIUM ERROR: disc unreadable",
			expectTags:     "ripline,error,medium_error",
			expectPriority: "high",
		},
		{
			name:          "backgrounded",
			event:         notifications.EventRunBackgrounded,
			payload:       notifications.Payload{"tool": "HandBrakeCLI", "pid": 4242},
			expectTitle:   "Ripline - Backgrounded",
			expectMessage: "⏸️ HandBrakeCLI continues in the background (pid 4242)",
			expectTags:    "ripline,run,backgrounded",
		},
		{
			name:          "processes killed",
			event:         notifications.EventProcessesKilled,
			payload:       notifications.Payload{"processes": "makemkvcon"},
			expectTitle:   "Ripline - Processes Stopped",
			expectMessage: "🛑 Stopped: makemkvcon",
			expectTags:    "ripline,process,killed",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Ripline - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "ripline,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresUnknownEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for unknown event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.Event("queue_started"), nil); err != nil {
		t.Fatalf("expected no error for unknown event, got %v", err)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

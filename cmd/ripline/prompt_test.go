package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestChooseParsesSelection(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"first", "1\n", 0, true},
		{"retry after invalid", "9\nabc\n2\n", 1, true},
		{"quit", "q\n", 0, false},
		{"empty line", "\n", 0, false},
		{"end of input", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := newTerminalPrompter(strings.NewReader(tt.input), &out)
			got, ok := p.Choose(context.Background(), "Choose a profile", []string{"Rip only", "Encode scratch"})
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Fatalf("Choose = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
			requireContains(t, out.String(), "2) Encode scratch")
		})
	}
}

func TestPromptTitle(t *testing.T) {
	p := newTerminalPrompter(strings.NewReader("The Thing\n\n"), io.Discard)
	if title, ok := p.PromptTitle(context.Background(), "title"); !ok || title != "The Thing" {
		t.Fatalf("PromptTitle = %q, %v", title, ok)
	}
	if _, ok := p.PromptTitle(context.Background(), "title"); ok {
		t.Fatal("an empty answer declines")
	}
}

func TestConfirmProcessAll(t *testing.T) {
	p := newTerminalPrompter(strings.NewReader("y\nno\n"), io.Discard)
	if !p.ConfirmProcessAll(context.Background(), 3) {
		t.Fatal("expected yes")
	}
	if p.ConfirmProcessAll(context.Background(), 3) {
		t.Fatal("expected no")
	}
}

func TestConfirmProcessAllDefaultsToNoAfterTimeout(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	p := newTerminalPrompter(reader, io.Discard)
	p.confirmTimeout = 30 * time.Millisecond

	start := time.Now()
	if p.ConfirmProcessAll(context.Background(), 2) {
		t.Fatal("expected no after timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took %s", elapsed)
	}
}

func TestConfirmProcessAllAssumeYes(t *testing.T) {
	p := newTerminalPrompter(strings.NewReader(""), io.Discard)
	p.assumeYes = true
	if !p.ConfirmProcessAll(context.Background(), 5) {
		t.Fatal("--yes must confirm without input")
	}
}

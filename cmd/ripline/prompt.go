package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

const confirmTimeout = 60 * time.Second

// terminalPrompter asks questions on a line-oriented terminal. It serves as
// both the profile menu and the pipeline's title and batch prompts.
type terminalPrompter struct {
	in  io.Reader
	out io.Writer

	// assumeYes answers batch confirmations without asking.
	assumeYes      bool
	confirmTimeout time.Duration

	startOnce sync.Once
	lines     chan string
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{
		in:             in,
		out:            out,
		confirmTimeout: confirmTimeout,
	}
}

// readLine waits for the next input line. A zero timeout waits until ctx is
// done or input ends.
func (p *terminalPrompter) readLine(ctx context.Context, timeout time.Duration) (string, bool) {
	p.startOnce.Do(func() {
		p.lines = make(chan string)
		go func() {
			defer close(p.lines)
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
		}()
	})

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case line, ok := <-p.lines:
		return strings.TrimSpace(line), ok
	case <-expired:
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// Choose prints a numbered menu. Empty input, "q" or end of input backs out.
func (p *terminalPrompter) Choose(ctx context.Context, title string, options []string) (int, bool) {
	fmt.Fprintln(p.out, title)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
	}
	for {
		fmt.Fprintf(p.out, "Select 1-%d (q to quit): ", len(options))
		answer, ok := p.readLine(ctx, 0)
		if !ok || answer == "" || strings.EqualFold(answer, "q") {
			return 0, false
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, true
		}
		fmt.Fprintf(p.out, "%q is not a valid choice\n", answer)
	}
}

func (p *terminalPrompter) PromptTitle(ctx context.Context, suggestion string) (string, bool) {
	fmt.Fprintf(p.out, "Title for %q: ", suggestion)
	answer, ok := p.readLine(ctx, 0)
	if !ok || answer == "" {
		return "", false
	}
	return answer, true
}

// ConfirmProcessAll defaults to no when the operator does not answer in time.
func (p *terminalPrompter) ConfirmProcessAll(ctx context.Context, count int) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.out, "%d files are waiting in scratch. Process all of them? [y/N] ", count)
	answer, ok := p.readLine(ctx, p.confirmTimeout)
	if !ok {
		fmt.Fprintln(p.out)
		return false
	}
	return yesNo(answer)
}

func yesNo(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

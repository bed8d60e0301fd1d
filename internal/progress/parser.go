package progress

import (
	"strings"
	"time"
)

// State is the normalized progress of one tool invocation. It has a single
// writer, the Parser that owns it.
type State struct {
	Phase       string
	Percent     float64
	StartedAt   time.Time
	LastMessage string
}

// Update describes what a single line changed.
type Update struct {
	Phase          string
	Percent        float64
	Message        string
	PhaseChanged   bool
	PercentChanged bool
	// Fatal is set when the ripper reported a medium or hardware error. The
	// caller must stop the tool without waiting for it to exit.
	Fatal bool
}

// Changed reports whether the phase or percent moved.
func (u Update) Changed() bool {
	return u.PhaseChanged || u.PercentChanged
}

// Parser feeds lines from a tool's combined output into a State.
type Parser struct {
	state State
}

// NewParser returns a parser whose state starts at startedAt.
func NewParser(startedAt time.Time) *Parser {
	return &Parser{state: State{StartedAt: startedAt}}
}

// State returns a copy of the current state.
func (p *Parser) State() State {
	return p.state
}

// Feed decodes one line. The boolean result is false when the line carried
// nothing the parser recognizes or when a numeric field failed to decode.
func (p *Parser) Feed(line string) (Update, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Update{}, false
	}

	token, payload, hasToken := splitToken(line)
	if hasToken {
		switch token {
		case "PRGC", "PRGT":
			rec, ok := decodeRipperPhase(payload)
			if !ok {
				return Update{}, false
			}
			return p.apply(rec.Name, p.state.Percent, ""), true
		case "PRGV":
			rec, ok := decodeRipperValue(payload)
			if !ok {
				return Update{}, false
			}
			return p.apply(p.state.Phase, float64(rec.Percent()), ""), true
		case "MSG":
			rec, ok := decodeRipperMessage(payload)
			if !ok {
				return Update{}, false
			}
			p.state.LastMessage = rec.Text
			update := p.apply(p.state.Phase, p.state.Percent, rec.Text)
			update.Fatal = rec.Fatal()
			return update, true
		}
		if strings.Contains(token, PhaseEncoding) {
			rec, ok := decodeEncoderStatus(token, payload)
			if !ok {
				return Update{}, false
			}
			return p.apply(rec.Label, rec.Percent, ""), true
		}
	}

	if strings.Contains(line, "done, ") {
		rec, ok := decodeISOStatus(line)
		if !ok {
			return Update{}, false
		}
		return p.apply(PhaseCreateISO, rec.Percent, ""), true
	}
	return Update{}, false
}

func (p *Parser) apply(phase string, percent float64, message string) Update {
	update := Update{
		Phase:          phase,
		Percent:        percent,
		Message:        message,
		PhaseChanged:   phase != p.state.Phase,
		PercentChanged: percent != p.state.Percent,
	}
	p.state.Phase = phase
	p.state.Percent = percent
	return update
}

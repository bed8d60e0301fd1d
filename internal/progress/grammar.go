package progress

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// Phase labels produced by the encoder and ISO builder grammars.
const (
	PhaseEncoding  = "Encoding"
	PhaseCreateISO = "create ISO"
)

var fatalMarkers = []string{"MEDIUM ERROR", "HARDWARE ERROR"}

// ripperPhase is a PRGC (current) or PRGT (total) record: code,id,"name".
type ripperPhase struct {
	Code string
	ID   string
	Name string
}

// ripperValue is a PRGV record: current,unused,total.
type ripperValue struct {
	Current int64
	Unused  int64
	Total   int64
}

// Percent applies integer floor division.
func (v ripperValue) Percent() int64 {
	return v.Current * 100 / v.Total
}

// ripperMessage is an MSG record: code,flags,count,"text",...
type ripperMessage struct {
	Code  string
	Flags string
	Count string
	Text  string
}

// Fatal reports whether the ripper announced a physical read failure.
func (m ripperMessage) Fatal() bool {
	upper := strings.ToUpper(m.Text)
	for _, marker := range fatalMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// encoderStatus is the encoder's "<label>: task 1 of 1, 12.34 % (...)" line.
type encoderStatus struct {
	Label   string
	Percent float64
}

// isoStatus is the ISO builder's " 12.34% done, estimate finish ..." line.
type isoStatus struct {
	Percent float64
}

// splitToken separates the leading token before the first ':' from the payload.
func splitToken(line string) (string, string, bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), line[idx+1:], true
}

// splitFields splits a comma-separated payload, honouring double quotes so
// commas inside a quoted message do not shift field positions.
func splitFields(payload string) ([]string, bool) {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	record, err := reader.Read()
	if err != nil {
		return nil, false
	}
	for i := range record {
		record[i] = strings.Trim(record[i], `"`)
	}
	return record, true
}

func decodeRipperPhase(payload string) (ripperPhase, bool) {
	fields, ok := splitFields(payload)
	if !ok || len(fields) < 3 {
		return ripperPhase{}, false
	}
	return ripperPhase{Code: fields[0], ID: fields[1], Name: strings.TrimSpace(fields[2])}, true
}

func decodeRipperValue(payload string) (ripperValue, bool) {
	fields, ok := splitFields(payload)
	if !ok || len(fields) < 3 {
		return ripperValue{}, false
	}
	var v ripperValue
	var err error
	if v.Current, err = strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64); err != nil {
		return ripperValue{}, false
	}
	if v.Unused, err = strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64); err != nil {
		return ripperValue{}, false
	}
	if v.Total, err = strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64); err != nil {
		return ripperValue{}, false
	}
	if v.Total <= 0 {
		return ripperValue{}, false
	}
	return v, true
}

func decodeRipperMessage(payload string) (ripperMessage, bool) {
	fields, ok := splitFields(payload)
	if !ok || len(fields) < 4 {
		return ripperMessage{}, false
	}
	return ripperMessage{Code: fields[0], Flags: fields[1], Count: fields[2], Text: strings.TrimSpace(fields[3])}, true
}

func decodeEncoderStatus(token, payload string) (encoderStatus, bool) {
	fields := strings.Split(payload, ",")
	if len(fields) < 2 {
		return encoderStatus{}, false
	}
	percent, ok := leadingDecimal(fields[1])
	if !ok {
		return encoderStatus{}, false
	}
	return encoderStatus{Label: token, Percent: percent}, true
}

func decodeISOStatus(line string) (isoStatus, bool) {
	idx := strings.Index(line, "done, ")
	if idx < 0 {
		return isoStatus{}, false
	}
	percent, ok := leadingDecimal(line[:idx])
	if !ok {
		return isoStatus{}, false
	}
	return isoStatus{Percent: percent}, true
}

// leadingDecimal parses the decimal number at the start of s after leading
// whitespace, ignoring anything that follows it (such as " %" or "%").
func leadingDecimal(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

package makemkv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Executor runs a command to completion and returns its combined output.
type Executor interface {
	CombinedOutput(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps makemkvcon interactions for a single drive.
type Client struct {
	binary           string
	driveID          string
	inventoryTimeout time.Duration
	exec             Executor
}

// Drive is one DRV line of the inventory report.
type Drive struct {
	Index      int
	Visible    int
	Enabled    int
	Flags      int
	DriveName  string
	DiscTitle  string
	DevicePath string
}

// HasMedia reports whether a disc with a readable title sits in the drive.
func (d Drive) HasMedia() bool {
	return d.DiscTitle != ""
}

// New constructs a client for driveID. inventoryTimeoutSeconds bounds the
// inventory scan; zero disables the bound.
func New(binary, driveID string, inventoryTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("makemkv binary required")
	}
	client := &Client{
		binary:           binary,
		driveID:          strings.TrimSpace(driveID),
		inventoryTimeout: time.Duration(inventoryTimeoutSeconds) * time.Second,
		exec:             commandExecutor{},
	}
	if client.driveID == "" {
		client.driveID = "0"
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured makemkvcon path.
func (c *Client) Binary() string {
	return c.binary
}

// RipArgs extracts every title of at least minLengthSeconds into dir.
func (c *Client) RipArgs(minLengthSeconds int, dir string) []string {
	return []string{
		"mkv", "-r",
		"--messages=-stdout",
		"--progress=-same",
		"--decrypt",
		"disc:" + c.driveID,
		"all",
		"--minlength=" + strconv.Itoa(minLengthSeconds),
		dir,
	}
}

// BackupArgs copies the decrypted disc structure into dir.
func (c *Client) BackupArgs(dir string) []string {
	return []string{
		"backup", "-r",
		"--decrypt",
		"--cache=16",
		"--noscan",
		"--progress=-same",
		"disc:" + c.driveID,
		dir,
	}
}

// Inventory runs "info list -r" and returns the drive holding media. The
// report is parsed even when makemkvcon exits non-zero, which it does when
// some drives are empty. ok is false when no matching drive has media.
func (c *Client) Inventory(ctx context.Context) (Drive, bool, error) {
	if c.inventoryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.inventoryTimeout)
		defer cancel()
	}
	out, err := c.exec.CombinedOutput(ctx, c.binary, []string{"info", "list", "-r"})
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Drive{}, false, fmt.Errorf("makemkv inventory: %w", err)
		}
	}
	drive, ok := FindMedia(ParseDrives(string(out)), c.driveID)
	return drive, ok, nil
}

// ParseDrives decodes the DRV lines of an inventory report. Malformed lines
// are skipped.
func ParseDrives(report string) []Drive {
	var drives []Drive
	for _, line := range strings.Split(report, "\n") {
		line = strings.TrimSpace(line)
		payload, found := strings.CutPrefix(line, "DRV:")
		if !found {
			continue
		}
		fields, ok := splitFields(payload)
		if !ok || len(fields) < 6 {
			continue
		}
		drive := Drive{
			Index:     atoi(fields[0]),
			Visible:   atoi(fields[1]),
			Enabled:   atoi(fields[2]),
			Flags:     atoi(fields[3]),
			DriveName: fields[4],
			DiscTitle: fields[5],
		}
		if len(fields) > 6 {
			drive.DevicePath = fields[6]
		}
		drives = append(drives, drive)
	}
	return drives
}

// FindMedia returns the first drive with media. A numeric driveID restricts
// the match to that drive index.
func FindMedia(drives []Drive, driveID string) (Drive, bool) {
	index, numeric := -1, false
	if n, err := strconv.Atoi(strings.TrimSpace(driveID)); err == nil {
		index, numeric = n, true
	}
	for _, d := range drives {
		if !d.HasMedia() {
			continue
		}
		if numeric && d.Index != index {
			continue
		}
		return d, true
	}
	return Drive{}, false
}

func splitFields(payload string) ([]string, bool) {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err != nil {
		return nil, false
	}
	for i := range record {
		record[i] = strings.TrimSpace(strings.Trim(record[i], `"`))
	}
	return record, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}

type commandExecutor struct{}

func (commandExecutor) CombinedOutput(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput() //nolint:gosec
}

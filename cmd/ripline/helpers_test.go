package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ripline/internal/config"
	"ripline/internal/testsupport"
)

const ripperScript = `
for last; do :; done
case "$1" in
info)
  echo 'DRV:0,2,999,1,"BD-RE HL-DT-ST","My_Movie","/dev/sr0"'
  exit 0
  ;;
mkv)
  echo 'PRGV:0,0,65536'
  printf '%4096s' x > "$last/title_t00.mkv"
  echo 'PRGV:65536,0,65536'
  exit 0
  ;;
esac
exit 1
`

const emptyDriveScript = `
echo 'DRV:0,0,999,0,"BD-RE HL-DT-ST","","/dev/sr0"'
exit 0
`

type cliEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLI writes a config whose ripper is the given script. The encoder and
// ISO builder succeed without doing anything.
func setupCLI(t *testing.T, ripper string, extra string) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RIPLINE_NTFY_TOPIC", "")
	t.Setenv("RIPLINE_JELLYFIN_API_KEY", "")

	cfg := testsupport.NewConfig(t)
	bin := filepath.Join(testsupport.BaseDir(cfg), "bin")
	cfg.Tools.Ripper = testsupport.WriteScript(t, bin, "makemkvcon", ripper)
	cfg.Tools.Encoder = testsupport.WriteScript(t, bin, "HandBrakeCLI", "exit 0\n")
	cfg.Tools.ISOBuilder = testsupport.WriteScript(t, bin, "mkisofs", "exit 0\n")

	body := fmt.Sprintf(`[paths]
scratch_dir = %q
destination_dir = %q
log_dir = %q

[tools]
ripper = %q
encoder = %q
iso_builder = %q

[disc]
device = ""
eject = false

[logging]
level = "error"

[runner]
poll_interval_ms = 20

[[profiles]]
name = "Rip only"
mode = "rip"
min_title_length = 0
%s`,
		cfg.Paths.ScratchDir, cfg.Paths.DestinationDir, cfg.Paths.LogDir,
		cfg.Tools.Ripper, cfg.Tools.Encoder, cfg.Tools.ISOBuilder, extra)

	path := filepath.Join(testsupport.BaseDir(cfg), "ripline.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{cfg: cfg, configPath: path}
}

func runCLI(t *testing.T, env *cliEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	if env != nil {
		args = append([]string{"--config", env.configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

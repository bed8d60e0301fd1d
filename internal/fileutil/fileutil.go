// Package fileutil copies staged files into the destination tree.
package fileutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ripline/internal/progressui"
	"ripline/internal/services"
)

const minChunk = 1 << 20

// Copy streams src to dst, creating dst's directory, and reports percent
// copied to display. The data lands in dst+".part" and is renamed into place
// once the size matches the source. Any failure, including cancellation,
// removes the partial file and is reported as services.ErrCopyInterrupted.
func Copy(ctx context.Context, src, dst string, display progressui.Display) error {
	if display == nil {
		display = progressui.Nop{}.Open("")
	}
	if err := copyFile(ctx, src, dst, display); err != nil {
		return services.Wrap(services.ErrCopyInterrupted, "publish", "copy "+filepath.Base(src), "", err)
	}
	return nil
}

func copyFile(ctx context.Context, src, dst string, display progressui.Display) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	total := info.Size()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination folder: %w", err)
	}
	part := dst + ".part"
	out, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = out.Close()
			_ = os.Remove(part)
		}
	}()

	chunk := max(total/100, minChunk)
	buf := make([]byte, chunk)
	var written int64
	display.Update(0, "Copying")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := io.ReadFull(in, buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return err
			}
			written += int64(n)
			if total > 0 {
				display.Update(float64(written*100/total), "Copying")
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	if written != total {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", total, written)
	}
	if err := out.Sync(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(part, dst); err != nil {
		_ = os.Remove(part)
		return err
	}
	committed = true
	return nil
}

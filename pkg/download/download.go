package download

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yumyai/snpview/logger"
	"github.com/yumyai/snpview/pkg/render"
	"go.uber.org/zap"
)

var ErrNoArtifacts = errors.New("no rendered artifacts to deliver")

// Dir delivers artifacts by copying them into a per-session folder
// that the UI serves for download.
type Dir struct {
	Root string
}

func (d *Dir) Deliver(sessionID string, artifacts []render.Artifact) error {

	if len(artifacts) == 0 {
		return ErrNoArtifacts
	}

	dest := filepath.Join(d.Root, sessionID)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("prepare download dir: %w", err)
	}

	for _, a := range artifacts {
		if err := copyFile(a.Path, filepath.Join(dest, a.Name)); err != nil {
			return fmt.Errorf("deliver %s: %w", a.Name, err)
		}
	}

	logger.Info("Artifacts delivered",
		zap.String("session", sessionID),
		zap.Int("count", len(artifacts)),
		zap.String("dest", dest),
	)
	return nil
}

func copyFile(src, dst string) error {

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

//go:build !windows

package window

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Portable is a pid-based Manager built on robotgo. Window classes have no
// portable meaning, so lookups match on title only.
type Portable struct {
	logger *slog.Logger
}

// NewManager returns the platform window manager.
func NewManager(logger *slog.Logger) Manager { return &Portable{logger: logger} }

func (m *Portable) Find(spec Spec) (Handle, bool) {
	if spec.Title == "" {
		return 0, false
	}
	pids, err := robotgo.Pids()
	if err != nil {
		return 0, false
	}
	for _, pid := range pids {
		if robotgo.GetTitle(pid) == spec.Title {
			return Handle(pid), true
		}
	}
	return 0, false
}

func (m *Portable) Rect(h Handle) (image.Rectangle, error) {
	x, y, w, hh := robotgo.GetBounds(int(h))
	if w <= 0 || hh <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: pid %d", ErrNotFound, h)
	}
	return image.Rect(x, y, x+w, y+hh), nil
}

func (m *Portable) BringToForeground(h Handle) error {
	return robotgo.ActivePid(int(h))
}

func (m *Portable) PostClose(h Handle) error {
	return errors.New("window: close message not supported on this platform")
}

func (m *Portable) TerminateProcess(imageName string) (int, error) {
	name := strings.TrimSuffix(imageName, ".exe")
	pids, err := robotgo.FindIds(name)
	if err != nil {
		return 0, fmt.Errorf("window: find %s: %w", name, err)
	}
	killed := 0
	for _, pid := range pids {
		if err := robotgo.Kill(pid); err != nil {
			if m.logger != nil {
				m.logger.Warn("terminate failed", "pid", pid, "error", err)
			}
			continue
		}
		killed++
	}
	if killed == 0 {
		return 0, fmt.Errorf("%w: process %s", ErrNotFound, imageName)
	}
	return killed, nil
}

func (m *Portable) ListTitles() ([]string, error) {
	pids, err := robotgo.Pids()
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, pid := range pids {
		if t := strings.TrimSpace(robotgo.GetTitle(pid)); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

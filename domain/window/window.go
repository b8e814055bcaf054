// Package window locates, activates and closes top-level windows and
// terminates processes. The Windows implementation talks to user32 and the
// toolhelp snapshot API; other platforms get a best-effort robotgo variant.
package window

import (
	"errors"
	"fmt"
	"image"
)

// Handle identifies a top-level window (HWND on Windows, pid elsewhere).
// The zero Handle means "no window".
type Handle uintptr

// ErrNotFound is returned when a lookup matches no window or process.
var ErrNotFound = errors.New("window: not found")

// Spec names a window by class and/or title. An empty field matches any
// value, mirroring FindWindow's NULL arguments.
type Spec struct {
	Class string `json:"class,omitempty"`
	Title string `json:"title,omitempty"`
}

func (s Spec) String() string {
	switch {
	case s.Class != "" && s.Title != "":
		return fmt.Sprintf("%s %q", s.Class, s.Title)
	case s.Class != "":
		return s.Class
	default:
		return fmt.Sprintf("%q", s.Title)
	}
}

// IsZero reports whether the spec carries no criteria.
func (s Spec) IsZero() bool { return s.Class == "" && s.Title == "" }

// Finder looks up windows.
type Finder interface {
	Find(spec Spec) (Handle, bool)
}

// Manager is the window/process backend consumed by the automation layer.
type Manager interface {
	Finder
	Rect(h Handle) (image.Rectangle, error)
	BringToForeground(h Handle) error
	PostClose(h Handle) error
	TerminateProcess(imageName string) (int, error)
	ListTitles() ([]string, error)
}

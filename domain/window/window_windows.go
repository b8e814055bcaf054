//go:build windows

package window

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	wmClose       = 0x0010
	swRestore     = 9
	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpShowWindow = 0x0040
)

var (
	hwndTopmost   = ^uintptr(0) // (HWND)-1
	hwndNoTopmost = ^uintptr(1) // (HWND)-2
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procIsWindow            = user32.NewProc("IsWindow")
	procIsIconic            = user32.NewProc("IsIconic")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procSetFocus            = user32.NewProc("SetFocus")
	procPostMessageW        = user32.NewProc("PostMessageW")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
)

// Win32 is the user32/kernel32 backed Manager.
type Win32 struct {
	logger *slog.Logger
}

// NewManager returns the platform window manager.
func NewManager(logger *slog.Logger) Manager { return &Win32{logger: logger} }

// Find wraps FindWindowW; empty spec fields are passed as NULL.
func (m *Win32) Find(spec Spec) (Handle, bool) {
	if spec.IsZero() {
		return 0, false
	}
	class, err := optionalUTF16(spec.Class)
	if err != nil {
		return 0, false
	}
	title, err := optionalUTF16(spec.Title)
	if err != nil {
		return 0, false
	}
	h, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(class)), uintptr(unsafe.Pointer(title)))
	return Handle(h), h != 0
}

func optionalUTF16(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	return windows.UTF16PtrFromString(s)
}

// Rect returns the window's frame rectangle in screen coordinates.
func (m *Win32) Rect(h Handle) (image.Rectangle, error) {
	if ok, _, _ := procIsWindow.Call(uintptr(h)); ok == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: handle %#x", ErrNotFound, uintptr(h))
	}
	var r windows.Rect
	if ok, _, err := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return image.Rectangle{}, fmt.Errorf("window: GetWindowRect: %v", err)
	}
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)), nil
}

// BringToForeground restores a minimised window, toggles it topmost and
// back so it is raised above other windows, then gives it focus.
func (m *Win32) BringToForeground(h Handle) error {
	if ok, _, _ := procIsWindow.Call(uintptr(h)); ok == 0 {
		return fmt.Errorf("%w: handle %#x", ErrNotFound, uintptr(h))
	}
	if iconic, _, _ := procIsIconic.Call(uintptr(h)); iconic != 0 {
		procShowWindow.Call(uintptr(h), swRestore)
	}
	flags := uintptr(swpNoMove | swpNoSize | swpShowWindow)
	procSetWindowPos.Call(uintptr(h), hwndTopmost, 0, 0, 0, 0, flags)
	procSetWindowPos.Call(uintptr(h), hwndNoTopmost, 0, 0, 0, 0, flags)
	procSetForegroundWindow.Call(uintptr(h))
	procSetFocus.Call(uintptr(h))
	return nil
}

// PostClose posts WM_CLOSE without waiting for the window to handle it.
func (m *Win32) PostClose(h Handle) error {
	if ok, _, err := procPostMessageW.Call(uintptr(h), wmClose, 0, 0); ok == 0 {
		return fmt.Errorf("window: PostMessage WM_CLOSE: %v", err)
	}
	return nil
}

// TerminateProcess force-kills every process whose executable name matches
// imageName (case-insensitive) and returns how many were terminated.
func (m *Win32) TerminateProcess(imageName string) (int, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("window: process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snap, &entry); err != nil {
		return 0, fmt.Errorf("window: process walk: %w", err)
	}
	killed := 0
	for {
		name := windows.UTF16ToString(entry.ExeFile[:])
		if strings.EqualFold(name, imageName) {
			if err := terminatePID(entry.ProcessID); err != nil {
				if m.logger != nil {
					m.logger.Warn("terminate failed", "pid", entry.ProcessID, "image", name, "error", err)
				}
			} else {
				killed++
			}
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	if killed == 0 {
		return 0, fmt.Errorf("%w: process %s", ErrNotFound, imageName)
	}
	return killed, nil
}

func terminatePID(pid uint32) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.TerminateProcess(h, 1)
}

var (
	enumOnce   sync.Once
	enumMu     sync.Mutex
	enumTitles []string
	enumCB     uintptr
)

// ListTitles returns the titles of visible top-level windows; empty titles
// are skipped.
func (m *Win32) ListTitles() ([]string, error) {
	enumOnce.Do(func() {
		// Callbacks are a finite resource; create the trampoline once.
		enumCB = windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
			if vis, _, _ := procIsWindowVisible.Call(hwnd); vis == 0 {
				return 1
			}
			buf := make([]uint16, 256)
			n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
			if n == 0 {
				return 1
			}
			if title := strings.TrimSpace(windows.UTF16ToString(buf[:n])); title != "" {
				enumTitles = append(enumTitles, title)
			}
			return 1
		})
	})
	enumMu.Lock()
	defer enumMu.Unlock()
	enumTitles = nil
	if r, _, err := procEnumWindows.Call(enumCB, 0); r == 0 {
		return nil, fmt.Errorf("window: EnumWindows: %v", err)
	}
	out := enumTitles
	enumTitles = nil
	return out, nil
}

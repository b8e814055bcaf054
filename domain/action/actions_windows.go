//go:build windows

package action

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfLeftDown = 0x0002
	mouseeventfLeftUp   = 0x0004

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
	keyeventfScanCode    = 0x0008

	mapvkVKToVSC = 0
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procSetCursorPos   = user32.NewProc("SetCursorPos")
	procSendInput      = user32.NewProc("SendInput")
	procMapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

// INPUT layouts. The union is sized by MOUSEINPUT; the keyboard variant is
// padded to match so both report the same cbSize.
type mouseInput struct {
	Dx, Dy    int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type mouseINPUT struct {
	Type uint32
	Mi   mouseInput
}

type keybdINPUT struct {
	Type uint32
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

// SendInputBackend injects events with SendInput and positions the cursor
// with SetCursorPos, which accepts virtual-screen coordinates directly.
type SendInputBackend struct{}

// NewBackend returns the platform input backend.
func NewBackend() Backend { return SendInputBackend{} }

func (SendInputBackend) MoveCursor(x, y int) error {
	if ok, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y)); ok == 0 {
		return fmt.Errorf("action: SetCursorPos(%d,%d): %v", x, y, err)
	}
	return nil
}

func (SendInputBackend) SendButton(down bool) error {
	in := mouseINPUT{Type: inputMouse}
	if down {
		in.Mi.Flags = mouseeventfLeftDown
	} else {
		in.Mi.Flags = mouseeventfLeftUp
	}
	return sendInput(unsafe.Pointer(&in), unsafe.Sizeof(in))
}

func (SendInputBackend) ScanCode(vk VK) uint16 {
	sc, _, _ := procMapVirtualKeyW.Call(uintptr(vk), mapvkVKToVSC)
	return uint16(sc)
}

func (SendInputBackend) SendKey(scan uint16, vk VK, extended, down bool) error {
	in := keybdINPUT{Type: inputKeyboard}
	in.Ki.Scan = scan
	in.Ki.Flags = keyeventfScanCode
	if scan == 0 {
		// No scan code mapping; fall back to the virtual-key code.
		in.Ki.Vk = uint16(vk)
		in.Ki.Flags = 0
	}
	if extended {
		in.Ki.Flags |= keyeventfExtendedKey
	}
	if !down {
		in.Ki.Flags |= keyeventfKeyUp
	}
	return sendInput(unsafe.Pointer(&in), unsafe.Sizeof(in))
}

func sendInput(p unsafe.Pointer, size uintptr) error {
	n, _, err := procSendInput.Call(1, uintptr(p), size)
	if n != 1 {
		return fmt.Errorf("action: SendInput: %v", err)
	}
	return nil
}

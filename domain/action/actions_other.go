//go:build !windows

package action

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
)

// RobotBackend injects events through robotgo. robotgo addresses keys by
// name, so the scan code is the virtual-key code itself.
type RobotBackend struct{}

// NewBackend returns the platform input backend.
func NewBackend() Backend { return RobotBackend{} }

func (RobotBackend) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (RobotBackend) SendButton(down bool) error {
	if down {
		return robotgo.Toggle("left")
	}
	return robotgo.Toggle("left", "up")
}

func (RobotBackend) ScanCode(vk VK) uint16 { return uint16(vk) }

func (RobotBackend) SendKey(_ uint16, vk VK, _ bool, down bool) error {
	name, ok := robotKeyName(vk)
	if !ok {
		return fmt.Errorf("action: no portable name for vk %#x", uint16(vk))
	}
	state := "up"
	if down {
		state = "down"
	}
	return robotgo.KeyToggle(name, state)
}

var robotNames = map[VK]string{
	VKBack: "backspace", VKTab: "tab", VKReturn: "enter",
	VKShift: "shift", VKLShift: "lshift", VKRShift: "rshift",
	VKControl: "ctrl", VKLControl: "lctrl", VKRControl: "rctrl",
	VKMenu: "alt", VKLMenu: "lalt", VKRMenu: "ralt",
	VKCapital: "capslock", VKEscape: "esc", VKSpace: "space",
	VKLeft: "left", VKUp: "up", VKRight: "right", VKDown: "down",
}

func robotKeyName(vk VK) (string, bool) {
	if n, ok := robotNames[vk]; ok {
		return n, true
	}
	switch {
	case vk >= VKF1 && vk < VKF1+24:
		return fmt.Sprintf("f%d", vk-VKF1+1), true
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return strings.ToLower(string(rune(vk))), true
	}
	return "", false
}

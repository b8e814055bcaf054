package action

import (
	"fmt"
	"strconv"
	"strings"
)

// VK is a Windows virtual-key code. It is the logical key identifier used
// on every platform.
type VK uint16

// Key is a logical key with its virtual-key code and whether keyboards
// report it with the extended-key prefix.
type Key struct {
	Name     string
	VK       VK
	Extended bool
}

func (k Key) String() string { return k.Name }

const (
	VKBack     VK = 0x08
	VKTab      VK = 0x09
	VKReturn   VK = 0x0D
	VKShift    VK = 0x10
	VKControl  VK = 0x11
	VKMenu     VK = 0x12
	VKPause    VK = 0x13
	VKCapital  VK = 0x14
	VKEscape   VK = 0x1B
	VKSpace    VK = 0x20
	VKLeft     VK = 0x25
	VKUp       VK = 0x26
	VKRight    VK = 0x27
	VKDown     VK = 0x28
	VKF1       VK = 0x70
	VKNumLock  VK = 0x90
	VKScroll   VK = 0x91
	VKLShift   VK = 0xA0
	VKRShift   VK = 0xA1
	VKLControl VK = 0xA2
	VKRControl VK = 0xA3
	VKLMenu    VK = 0xA4
	VKRMenu    VK = 0xA5
)

// Extended reports whether vk is a modifier or lock key that is sent with
// the extended-key flag.
func Extended(vk VK) bool {
	switch vk {
	case VKNumLock, VKCapital, VKScroll,
		VKControl, VKLControl, VKRControl,
		VKShift, VKLShift, VKRShift,
		VKMenu, VKLMenu, VKRMenu:
		return true
	}
	return false
}

var named = map[string]VK{
	"BACK": VKBack, "BACKSPACE": VKBack,
	"TAB":    VKTab,
	"RETURN": VKReturn, "ENTER": VKReturn,
	"SHIFT": VKShift, "LSHIFT": VKLShift, "RSHIFT": VKRShift,
	"CONTROL": VKControl, "CTRL": VKControl, "LCONTROL": VKLControl, "RCONTROL": VKRControl,
	"MENU": VKMenu, "ALT": VKMenu, "LMENU": VKLMenu, "LALT": VKLMenu, "RMENU": VKRMenu, "RALT": VKRMenu,
	"PAUSE":   VKPause,
	"CAPITAL": VKCapital, "CAPSLOCK": VKCapital,
	"ESCAPE": VKEscape, "ESC": VKEscape,
	"SPACE":   VKSpace,
	"LEFT":    VKLeft,
	"UP":      VKUp,
	"RIGHT":   VKRight,
	"DOWN":    VKDown,
	"NUMLOCK": VKNumLock,
	"SCROLL":  VKScroll, "SCROLLLOCK": VKScroll,
}

// ParseKey converts a key token ("Esc", "F4", "alt", "R", "7") into a Key.
// F1..F24, letters, digits and the named keys above are recognised.
func ParseKey(token string) (Key, error) {
	k := strings.ToUpper(strings.TrimSpace(token))
	k = strings.TrimPrefix(k, "VK_")
	if vk, ok := named[k]; ok {
		return Key{Name: k, VK: vk, Extended: Extended(vk)}, nil
	}
	if len(k) >= 2 && k[0] == 'F' {
		if n, err := strconv.Atoi(k[1:]); err == nil && n >= 1 && n <= 24 {
			return Key{Name: k, VK: VKF1 + VK(n-1)}, nil
		}
	}
	if len(k) == 1 && (k[0] >= 'A' && k[0] <= 'Z' || k[0] >= '0' && k[0] <= '9') {
		return Key{Name: k, VK: VK(k[0])}, nil // 'A'..'Z' and '0'..'9' match VK codes
	}
	return Key{}, fmt.Errorf("action: unknown key %q", token)
}

// MustKey is ParseKey for compile-time constants.
func MustKey(token string) Key {
	k, err := ParseKey(token)
	if err != nil {
		panic(err)
	}
	return k
}

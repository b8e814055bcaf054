//go:build windows

package capture

// GDI capture. Each Grab selects a temporary top-down 32-bit DIB section
// into a memory DC, StretchBlt's the source rectangle into it with HALFTONE
// (area averaging) when scaling, copies the bits into the caller's buffer
// and frees every GDI object on the way out.

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCxVirtualScreen = 78
	smCyVirtualScreen = 79
	srccopy           = 0x00CC0020
	captureBlt        = 0x40000000
	dibRGBColors      = 0
	biRgb             = 0
	halftone          = 4
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	gdi32                  = windows.NewLazySystemDLL("gdi32.dll")
	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procGetSystemMetrics   = user32.NewProc("GetSystemMetrics")
	procGetWindowRect      = user32.NewProc("GetWindowRect")
	procIsWindow           = user32.NewProc("IsWindow")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procStretchBlt         = gdi32.NewProc("StretchBlt")
	procSetStretchBltMode  = gdi32.NewProc("SetStretchBltMode")
	procSetBrushOrgEx      = gdi32.NewProc("SetBrushOrgEx")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
	procGdiFlush           = gdi32.NewProc("GdiFlush")
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	_      [4]byte // one RGBQUAD placeholder (unused for 32-bit)
}

// GDIBackend captures through the Windows GDI.
type GDIBackend struct{}

// NewBackend returns the platform capture backend.
func NewBackend() Backend { return GDIBackend{} }

// Bounds resolves t against the virtual screen metrics or the window rect.
func (GDIBackend) Bounds(t Target) (image.Rectangle, error) {
	if t.IsDesktop() {
		x := getSystemMetric(smXVirtualScreen)
		y := getSystemMetric(smYVirtualScreen)
		w := getSystemMetric(smCxVirtualScreen)
		h := getSystemMetric(smCyVirtualScreen)
		if w <= 0 || h <= 0 {
			return image.Rectangle{}, fmt.Errorf("%w: virtual screen %dx%d", ErrTargetUnavailable, w, h)
		}
		return image.Rect(x, y, x+w, y+h), nil
	}
	if ok, _, _ := procIsWindow.Call(uintptr(t.Window)); ok == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: invalid window %#x", ErrTargetUnavailable, uintptr(t.Window))
	}
	var r windows.Rect
	if ok, _, err := procGetWindowRect.Call(uintptr(t.Window), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: GetWindowRect: %v", ErrTargetUnavailable, err)
	}
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)), nil
}

// Grab reads src from the screen DC into dst at width x height.
func (GDIBackend) Grab(src image.Rectangle, width, height int, dst []byte) error {
	if len(dst) < width*height*4 {
		return fmt.Errorf("%w: destination %d bytes for %dx%d", ErrAllocationFailed, len(dst), width, height)
	}
	screenDC, _, _ := procGetDC.Call(0)
	if screenDC == 0 {
		return fmt.Errorf("%w: GetDC failed", ErrTargetUnavailable)
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, _ := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return fmt.Errorf("%w: CreateCompatibleDC failed", ErrAllocationFailed)
	}
	defer procDeleteDC.Call(memDC)

	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.BiWidth = int32(width)
	bi.Header.BiHeight = -int32(height) // top-down
	bi.Header.BiPlanes = 1
	bi.Header.BiBitCount = 32
	bi.Header.BiCompression = biRgb
	bi.Header.BiSizeImage = uint32(width * height * 4)

	var bits unsafe.Pointer
	bmp, _, _ := procCreateDIBSection.Call(memDC, uintptr(unsafe.Pointer(&bi)), dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if bmp == 0 || bits == nil {
		return fmt.Errorf("%w: CreateDIBSection %dx%d failed", ErrAllocationFailed, width, height)
	}
	defer procDeleteObject.Call(bmp)

	prev, _, _ := procSelectObject.Call(memDC, bmp)
	if prev == 0 || prev == ^uintptr(0) { // failure or GDI_ERROR
		return fmt.Errorf("%w: SelectObject failed", ErrAllocationFailed)
	}
	defer procSelectObject.Call(memDC, prev)

	var ok uintptr
	if width == src.Dx() && height == src.Dy() {
		ok, _, _ = procBitBlt.Call(memDC, 0, 0, uintptr(width), uintptr(height),
			screenDC, uintptr(src.Min.X), uintptr(src.Min.Y), srccopy|captureBlt)
	} else {
		procSetStretchBltMode.Call(memDC, halftone)
		procSetBrushOrgEx.Call(memDC, 0, 0, 0)
		ok, _, _ = procStretchBlt.Call(memDC, 0, 0, uintptr(width), uintptr(height),
			screenDC, uintptr(src.Min.X), uintptr(src.Min.Y), uintptr(src.Dx()), uintptr(src.Dy()), srccopy|captureBlt)
	}
	if ok == 0 {
		return fmt.Errorf("%w: blit %v -> %dx%d", ErrReadbackFailed, src, width, height)
	}
	procGdiFlush.Call()

	n := width * height * 4
	copy(dst[:n], unsafe.Slice((*byte)(bits), n))
	return nil
}

func getSystemMetric(idx int) int {
	v, _, _ := procGetSystemMetrics.Call(uintptr(idx))
	return int(int32(v))
}

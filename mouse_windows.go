//go:build windows

// mouse_windows.go: カーソル位置・カーソル制限・SendInput による入力注入。
package main

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	procClipCursor    = user32.NewProc("ClipCursor")
	procGetClipCursor = user32.NewProc("GetClipCursor")
	procSendInput     = user32.NewProc("SendInput")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventWheel  = 0x0800
	mouseEventHWheel = 0x1000
	keyEventKeyUp    = 0x0002
)

// mouseInput は MOUSEINPUT。
type mouseInput struct {
	dx        int32
	dy        int32
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// keybdInput は KEYBDINPUT。INPUT の共用体に mouseInput の領域を流用して書く。
type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// input は INPUT。共用体の最大メンバ（MOUSEINPUT）で領域を確保する。
type input struct {
	typ uint32
	mi  mouseInput
}

func (winPlatform) cursorPos() (point, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return point{}, callError("GetCursorPos", windows.GetLastError())
	}
	return point{pt.X, pt.Y}, nil
}

// clipCursor はカーソルを r に制限する。nil で解除する。
func (winPlatform) clipCursor(r *rect) error {
	var arg uintptr
	var wr win.RECT
	if r != nil {
		wr = win.RECT{Left: r.left, Top: r.top, Right: r.right, Bottom: r.bottom}
		arg = uintptr(unsafe.Pointer(&wr))
	}
	ret, _, err := procClipCursor.Call(arg)
	if ret == 0 {
		return callError("ClipCursor", err)
	}
	return nil
}

func (winPlatform) clipRect() (rect, error) {
	var wr win.RECT
	ret, _, err := procGetClipCursor.Call(uintptr(unsafe.Pointer(&wr)))
	if ret == 0 {
		return rect{}, callError("GetClipCursor", err)
	}
	return rect{wr.Left, wr.Top, wr.Right, wr.Bottom}, nil
}

// sendInput は events をまとめて1回の SendInput で注入する。
func (winPlatform) sendInput(events []syntheticEvent) error {
	if len(events) == 0 {
		return nil
	}
	inputs := make([]input, len(events))
	for i, ev := range events {
		in := &inputs[i]
		switch ev.kind {
		case injectWheel, injectHWheel:
			in.typ = inputMouse
			in.mi.mouseData = uint32(ev.data)
			in.mi.flags = mouseEventWheel
			if ev.kind == injectHWheel {
				in.mi.flags = mouseEventHWheel
			}
			in.mi.extraInfo = ev.extra
		case injectKeyDown, injectKeyUp:
			in.typ = inputKeyboard
			ki := (*keybdInput)(unsafe.Pointer(&in.mi))
			ki.vk = ev.vk
			if ev.kind == injectKeyUp {
				ki.flags = keyEventKeyUp
			}
			ki.extraInfo = ev.extra
		default:
			return fmt.Errorf("unknown synthetic event kind %d", ev.kind)
		}
	}

	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		if int(ret) > 0 {
			return fmt.Errorf("SendInput: only %d of %d events injected", ret, len(inputs))
		}
		return callError("SendInput", err)
	}
	return nil
}

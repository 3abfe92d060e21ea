//go:build windows

// eventtap_windows.go: WH_MOUSE_LL による低レベルマウスフック。
package main

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
)

const (
	whMouseLL = 14
	// LLMHF_INJECTED | LLMHF_LOWER_IL_INJECTED
	llmhfInjectedMask = 0x00000003
)

// msllHookStruct は MSLLHOOKSTRUCT。
type msllHookStruct struct {
	pt        struct{ x, y int32 }
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

var errFilterInstalled = errors.New("low-level mouse hook already installed")

// フックプロシージャはプロセスで1つ。コールバックは作り直さない（NewCallback の上限があるため）。
var (
	activePass   atomic.Pointer[passFunc]
	hookCallback = windows.NewCallback(lowLevelMouseProc)
)

func lowLevelMouseProc(code int32, wParam, lParam uintptr) uintptr {
	if code >= 0 {
		if pass := activePass.Load(); pass != nil {
			info := (*msllHookStruct)(unsafe.Pointer(lParam))
			ev := hookEvent{
				message:   uint32(wParam),
				injected:  info.flags&llmhfInjectedMask != 0,
				extraInfo: info.extraInfo,
			}
			if shouldSwallow(ev, *pass) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}

// installFilter は呼び出し元スレッドに低レベルマウスフックを導入する。
// フックはこのスレッドがメッセージを汲み上げている間だけ呼ばれる。
func (winPlatform) installFilter(pass passFunc) (filterHandle, error) {
	if !activePass.CompareAndSwap(nil, &pass) {
		return 0, errFilterInstalled
	}
	h, _, err := procSetWindowsHookExW.Call(whMouseLL, hookCallback, 0, 0)
	if h == 0 {
		activePass.Store(nil)
		return 0, callError("SetWindowsHookExW", err)
	}
	return filterHandle(h), nil
}

func (winPlatform) uninstallFilter(h filterHandle) error {
	defer activePass.Store(nil)
	ret, _, err := procUnhookWindowsHookEx.Call(uintptr(h))
	if ret == 0 {
		return callError("UnhookWindowsHookEx", err)
	}
	return nil
}

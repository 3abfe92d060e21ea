//go:build windows

// thread_windows.go: スレッド固定・スレッドメッセージキュー・タイマー。
package main

import (
	"fmt"
	"runtime"
	"syscall"
	"time"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procPostThreadMessageW           = user32.NewProc("PostThreadMessageW")
	procSetTimer                     = user32.NewProc("SetTimer")
	procKillTimer                    = user32.NewProc("KillTimer")
	procSetThreadDpiAwarenessContext = user32.NewProc("SetThreadDpiAwarenessContext")
	procSetThreadPriority            = kernel32.NewProc("SetThreadPriority")
)

const (
	threadPriorityTimeCritical = 15

	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 ((DPI_AWARENESS_CONTEXT)-4)
	dpiAwarenessPerMonitorV2 = ^uintptr(3)
)

// winPlatform は Win32 API による platform 実装。
type winPlatform struct{}

func newPlatform() platform {
	return winPlatform{}
}

// winQueue は OS スレッドのメッセージキュー。
type winQueue struct {
	tid threadID
}

func (q winQueue) id() threadID { return q.tid }

// next は GetMessage で次のメッセージを待つ。
// スレッドメッセージ（hwnd なし）もそのまま返し、ウィンドウ宛てはディスパッチもする。
func (q winQueue) next() (message, bool) {
	var m win.MSG
	r := win.GetMessage(&m, 0, 0, 0)
	if r == 0 || r == -1 {
		return message{}, false
	}
	win.DispatchMessage(&m)
	return message{id: m.Message, wParam: m.WParam, lParam: m.LParam}, true
}

func (winPlatform) lockThread() (threadQueue, error) {
	runtime.LockOSThread()
	// PeekMessage でキューを作っておく（PostThreadMessage の宛先になれるように）
	var m win.MSG
	win.PeekMessage(&m, 0, win.WM_USER, win.WM_USER, win.PM_NOREMOVE)
	return winQueue{tid: threadID(windows.GetCurrentThreadId())}, nil
}

func (winPlatform) boostThread() error {
	ret, _, err := procSetThreadPriority.Call(uintptr(windows.CurrentThread()), threadPriorityTimeCritical)
	if ret == 0 {
		return callError("SetThreadPriority", err)
	}
	return nil
}

func (winPlatform) post(to threadID, msg uint32, wParam, lParam uintptr) error {
	ret, _, err := procPostThreadMessageW.Call(uintptr(to), uintptr(msg), wParam, lParam)
	if ret == 0 {
		return callError("PostThreadMessageW", err)
	}
	return nil
}

func (winPlatform) now() time.Time {
	return time.Now()
}

func (winPlatform) enableDPIAwareness() error {
	if err := procSetThreadDpiAwarenessContext.Find(); err != nil {
		return err
	}
	ret, _, err := procSetThreadDpiAwarenessContext.Call(dpiAwarenessPerMonitorV2)
	if ret == 0 {
		return callError("SetThreadDpiAwarenessContext", err)
	}
	return nil
}

// startTimer はスレッドタイマーを開始する（hwnd なし、WM_TIMER がキューに届く）。
func (winPlatform) startTimer(interval time.Duration) (timerID, error) {
	ret, _, err := procSetTimer.Call(0, 0, uintptr(interval.Milliseconds()), 0)
	if ret == 0 {
		return 0, callError("SetTimer", err)
	}
	return timerID(ret), nil
}

func (winPlatform) stopTimer(t timerID) error {
	ret, _, err := procKillTimer.Call(0, uintptr(t))
	if ret == 0 {
		return callError("KillTimer", err)
	}
	return nil
}

// callError は Proc.Call の err を呼び出し名付きのエラーにする。
// 失敗しても GetLastError が 0 のままの API があるため、その場合も失敗として扱う。
func callError(name string, err error) error {
	if err == nil {
		return fmt.Errorf("%s failed", name)
	}
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		return fmt.Errorf("%s failed", name)
	}
	return fmt.Errorf("%s: %w", name, err)
}

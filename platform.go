// platform.go: OS 境界の抽象。
// スレッドメッセージキュー・Raw Input・フック・入力注入・カーソル制限をまとめる。
// Windows 実装は *_windows.go、それ以外は platform_other.go のスタブ。
package main

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("coastwheel: raw input capture is available on Windows only")

// threadID は OS スレッド ID（PostThreadMessage の宛先）。
type threadID uint32

// Win32 のメッセージ番号。
const (
	msgQuit  uint32 = 0x0012 // WM_QUIT
	msgInput uint32 = 0x00FF // WM_INPUT
	msgTimer uint32 = 0x0113 // WM_TIMER

	msgMButtonDown uint32 = 0x0207 // WM_MBUTTONDOWN
	msgMButtonUp   uint32 = 0x0208 // WM_MBUTTONUP
)

// スレッド間のプライベートメッセージ（WM_APP 帯）。
const (
	msgCaptureStopped uint32 = 0x8002
	msgCaptureStarted uint32 = 0x8003
	msgHookStopped    uint32 = 0x8004
	msgHookStarted    uint32 = 0x8005
	msgControl        uint32 = 0x8006 // wParam に controlOp
)

// message はスレッドキューから取り出した1件のメッセージ。
type message struct {
	id     uint32
	wParam uintptr
	lParam uintptr
}

// threadQueue は OS スレッドに固定された goroutine のメッセージキュー。
type threadQueue interface {
	id() threadID
	// next は次のメッセージを待つ。WM_QUIT を受け取ると false を返す。
	next() (message, bool)
}

type point struct{ x, y int32 }

// rect はスクリーン座標の矩形（right/bottom は含まない）。
type rect struct{ left, top, right, bottom int32 }

// rawMouse は WM_INPUT から取り出したマウスレコード。
type rawMouse struct {
	synthetic   bool   // hDevice が NULL（SendInput 由来）
	buttonFlags uint16 // usButtonFlags
	buttonData  int16  // usButtonData（ホイール量）
	lastX       int32
	lastY       int32
}

// syntheticKind は注入するイベントの種類。
type syntheticKind int

const (
	injectWheel  syntheticKind = iota // MOUSEEVENTF_WHEEL
	injectHWheel                      // MOUSEEVENTF_HWHEEL
	injectKeyDown
	injectKeyUp
)

// syntheticEvent は SendInput に渡す1件の入力。
type syntheticEvent struct {
	kind  syntheticKind
	data  int32  // ホイール量
	vk    uint16 // 仮想キー
	extra uintptr
}

// hookEvent は低レベルマウスフックが受け取ったボタンイベント。
type hookEvent struct {
	message   uint32 // WM_MBUTTONDOWN / WM_MBUTTONUP
	injected  bool   // LLMHF_INJECTED | LLMHF_LOWER_IL_INJECTED
	extraInfo uintptr
}

type timerID uintptr
type windowHandle uintptr
type filterHandle uintptr

// platform は coastwheel が必要とする OS 操作の集合。
type platform interface {
	// lockThread は呼び出し元 goroutine を OS スレッドに固定し、メッセージキューを作る。
	// 固定は解除しない（goroutine 終了とともにスレッドとキューが破棄される）。
	lockThread() (threadQueue, error)
	// boostThread は呼び出し元スレッドの優先度を最高（time-critical）にする。
	boostThread() error
	post(to threadID, msg uint32, wParam, lParam uintptr) error
	now() time.Time

	enableDPIAwareness() error
	createMessageWindow() (windowHandle, error)
	destroyWindow(w windowHandle) error
	registerRawMouse(w windowHandle) error
	unregisterRawMouse() error
	readRawMouse(lParam uintptr) (rawMouse, bool)
	startTimer(interval time.Duration) (timerID, error)
	stopTimer(t timerID) error

	cursorPos() (point, error)
	clipCursor(r *rect) error // nil で解除
	clipRect() (rect, error)
	sendInput(events []syntheticEvent) error

	installFilter(pass passFunc) (filterHandle, error)
	uninstallFilter(h filterHandle) error
}

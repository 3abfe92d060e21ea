//go:build windows

// device_windows.go: Raw Input によるマウスデバイスの受信。
// メッセージ専用ウィンドウを作り、フォーカスに関係なくマウスの生入力を受け取る。
package main

import (
	"errors"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	procRegisterRawInputDevices = user32.NewProc("RegisterRawInputDevices")
	procGetRawInputData         = user32.NewProc("GetRawInputData")
)

const (
	wsPopup     = 0x80000000
	hwndMessage = ^win.HWND(2) // HWND_MESSAGE ((HWND)-3)

	hidUsagePageGeneric = 0x01
	hidUsageMouse       = 0x02
	ridevRemove         = 0x00000001
	ridevInputSink      = 0x00000100
	ridInput            = 0x10000003
	rimTypeMouse        = 0
)

// rawInputDevice は RAWINPUTDEVICE。
type rawInputDevice struct {
	usagePage uint16
	usage     uint16
	flags     uint32
	target    win.HWND
}

// rawInputHeader は RAWINPUTHEADER。
type rawInputHeader struct {
	typ    uint32
	size   uint32
	device uintptr
	wParam uintptr
}

// rawMouseData は RAWMOUSE。usButtonFlags/usButtonData の共用体は分けて持つ。
type rawMouseData struct {
	flags            uint16
	_                uint16
	buttonFlags      uint16
	buttonData       uint16
	rawButtons       uint32
	lastX            int32
	lastY            int32
	extraInformation uint32
}

type rawInputMouse struct {
	header rawInputHeader
	mouse  rawMouseData
}

// registerErrorHints は RegisterRawInputDevices の代表的な失敗コードの説明。
var registerErrorHints = map[windows.Errno]string{
	87:   "invalid parameter, check RAWINPUTDEVICE structure",
	1004: "invalid dwFlags value",
	1008: "invalid hwndTarget",
	1168: "device not found",
}

var messageClass = windows.StringToUTF16Ptr("Message")

// createMessageWindow は WM_INPUT の受け口になるメッセージ専用ウィンドウを作る。
func (winPlatform) createMessageWindow() (windowHandle, error) {
	hwnd := win.CreateWindowEx(0, messageClass, nil, wsPopup, 0, 0, 0, 0, hwndMessage, 0, 0, nil)
	if hwnd == 0 {
		return 0, callError("CreateWindowEx", windows.GetLastError())
	}
	return windowHandle(hwnd), nil
}

func (winPlatform) destroyWindow(w windowHandle) error {
	if !win.DestroyWindow(win.HWND(w)) {
		return callError("DestroyWindow", windows.GetLastError())
	}
	return nil
}

// registerRawMouse はマウスの Raw Input をウィンドウに届くよう登録する。
// RIDEV_INPUTSINK で非フォーカス時も受信する。
func (winPlatform) registerRawMouse(w windowHandle) error {
	dev := rawInputDevice{
		usagePage: hidUsagePageGeneric,
		usage:     hidUsageMouse,
		flags:     ridevInputSink,
		target:    win.HWND(w),
	}
	ret, _, err := procRegisterRawInputDevices.Call(uintptr(unsafe.Pointer(&dev)), 1, unsafe.Sizeof(dev))
	if ret == 0 {
		var errno windows.Errno
		if errors.As(err, &errno) {
			if hint, ok := registerErrorHints[errno]; ok {
				captureLog.Errorf("RegisterRawInputDevices error %d: %s", uint32(errno), hint)
			}
		}
		return callError("RegisterRawInputDevices", err)
	}
	return nil
}

func (winPlatform) unregisterRawMouse() error {
	dev := rawInputDevice{
		usagePage: hidUsagePageGeneric,
		usage:     hidUsageMouse,
		flags:     ridevRemove,
	}
	ret, _, err := procRegisterRawInputDevices.Call(uintptr(unsafe.Pointer(&dev)), 1, unsafe.Sizeof(dev))
	if ret == 0 {
		return callError("RegisterRawInputDevices(remove)", err)
	}
	return nil
}

// readRawMouse は WM_INPUT の lParam（HRAWINPUT）からマウスレコードを取り出す。
// マウス以外・読み取り失敗は ok=false。
func (winPlatform) readRawMouse(lParam uintptr) (rawMouse, bool) {
	var data rawInputMouse
	size := uint32(unsafe.Sizeof(data))
	ret, _, _ := procGetRawInputData.Call(
		lParam,
		ridInput,
		uintptr(unsafe.Pointer(&data)),
		uintptr(unsafe.Pointer(&size)),
		unsafe.Sizeof(data.header),
	)
	if ret == 0 || int32(ret) == -1 {
		return rawMouse{}, false
	}
	if data.header.typ != rimTypeMouse {
		return rawMouse{}, false
	}
	return rawMouse{
		synthetic:   data.header.device == 0,
		buttonFlags: data.mouse.buttonFlags,
		buttonData:  int16(data.mouse.buttonData),
		lastX:       data.mouse.lastX,
		lastY:       data.mouse.lastY,
	}, true
}

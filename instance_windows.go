//go:build windows

// instance_windows.go: 多重起動の防止とエラーダイアログ。
package main

import (
	"errors"
	"fmt"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var errAlreadyRunning = errors.New("another instance is already running")

// acquireInstance は名前付きミューテックスでプロセスの単一性を確保する。
// 所有はせず、ハンドルが開いている間の存在だけで判定する。返り値の release で閉じる。
func acquireInstance(name string) (release func(), err error) {
	namePtr, err := windows.UTF16PtrFromString(`Local\` + name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateMutex(nil, false, namePtr)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		windows.CloseHandle(h)
		return nil, errAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("CreateMutex: %w", err)
	}
	return func() {
		windows.CloseHandle(h)
	}, nil
}

// showFatal はエラーをダイアログで表示する。
func showFatal(text string) {
	win.MessageBox(0, windows.StringToUTF16Ptr(text), windows.StringToUTF16Ptr(appName), win.MB_OK|win.MB_ICONERROR)
}

//go:build !windows

// platform_other.go: Windows 以外では起動できない。
package main

import "time"

type unsupportedPlatform struct{}

func newPlatform() platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) lockThread() (threadQueue, error) { return nil, errUnsupported }
func (unsupportedPlatform) boostThread() error               { return errUnsupported }
func (unsupportedPlatform) post(threadID, uint32, uintptr, uintptr) error {
	return errUnsupported
}
func (unsupportedPlatform) now() time.Time { return time.Now() }

func (unsupportedPlatform) enableDPIAwareness() error                  { return errUnsupported }
func (unsupportedPlatform) createMessageWindow() (windowHandle, error) { return 0, errUnsupported }
func (unsupportedPlatform) destroyWindow(windowHandle) error           { return errUnsupported }
func (unsupportedPlatform) registerRawMouse(windowHandle) error        { return errUnsupported }
func (unsupportedPlatform) unregisterRawMouse() error                  { return errUnsupported }
func (unsupportedPlatform) readRawMouse(uintptr) (rawMouse, bool)      { return rawMouse{}, false }
func (unsupportedPlatform) startTimer(time.Duration) (timerID, error)  { return 0, errUnsupported }
func (unsupportedPlatform) stopTimer(timerID) error                    { return errUnsupported }

func (unsupportedPlatform) cursorPos() (point, error)            { return point{}, errUnsupported }
func (unsupportedPlatform) clipCursor(*rect) error               { return errUnsupported }
func (unsupportedPlatform) clipRect() (rect, error)              { return rect{}, errUnsupported }
func (unsupportedPlatform) sendInput([]syntheticEvent) error     { return errUnsupported }
func (unsupportedPlatform) installFilter(passFunc) (filterHandle, error) {
	return 0, errUnsupported
}
func (unsupportedPlatform) uninstallFilter(filterHandle) error { return errUnsupported }

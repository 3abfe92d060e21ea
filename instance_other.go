//go:build !windows

// instance_other.go: Windows 以外のスタブ。
package main

import (
	"errors"
	"fmt"
	"os"
)

var errAlreadyRunning = errors.New("another instance is already running")

func acquireInstance(string) (release func(), err error) {
	return func() {}, nil
}

func showFatal(text string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", appName, text)
}

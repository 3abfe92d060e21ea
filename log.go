// log.go: ロガー。
package main

import "github.com/kataras/golog"

var (
	appLog     = golog.Child("[app]")
	captureLog = golog.Child("[capture]")
	tapLog     = golog.Child("[eventtap]")
	configLog  = golog.Child("[config]")
)

// setupLogging はログレベルを設定する。子ロガーにも個別に反映する。
func setupLogging(debug bool) {
	level := "info"
	if debug {
		level = "debug"
	}
	golog.SetTimeFormat("15:04:05.000")
	golog.SetLevel(level)
	for _, l := range []*golog.Logger{appLog, captureLog, tapLog, configLog} {
		l.SetLevel(level)
	}
}

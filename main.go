// coastwheel: 中ボタンドラッグとホイールに慣性スクロールを追加する。
// ドラッグ量やホイール量を速度に加え、指数減衰しながらホイールイベントとして注入する。
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	opt := parseCLIOpts()
	setupLogging(opt.debug)

	release, err := acquireInstance(appName)
	if err != nil {
		if errors.Is(err, errAlreadyRunning) {
			showFatal("coastwheel is already running.")
		} else {
			showFatal(fmt.Sprintf("Error: %v", err))
		}
		os.Exit(1)
	}
	defer release()

	if err := initializeConfigIfNot(opt.configPath); err != nil {
		configLog.Warnf("couldn't create config file: %v", err)
	}

	app := NewApp(newPlatform(), func() Config {
		return loadConfig(opt.configPath)
	}, newStatusReporter())

	watcher, err := watchConfig(opt.configPath, reloadDebounce, func() {
		if err := app.Post(opResume); err != nil {
			configLog.Warnf("couldn't request reload: %v", err)
		}
	})
	if err != nil {
		configLog.Warnf("config reload disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		appLog.Infof("stopping...")
		if err := app.Quit(); err != nil {
			appLog.Warnf("quit: %v", err)
		}
	}()

	appLog.Infof("coastwheel started (config %s). Press Ctrl+C to stop.", opt.configPath)
	if err := app.Run(); err != nil {
		showFatal(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// newStatusReporter は状態遷移をログに残し、最初の起動失敗だけダイアログで知らせる。
func newStatusReporter() StatusFunc {
	started := false
	reported := false
	return func(s Status, err error) {
		appLog.Debugf("status: %s", s)
		switch s {
		case StatusHookStarted:
			started = true
		case StatusCaptureStopped:
			if err != nil && !started && !reported {
				reported = true
				showFatal(fmt.Sprintf("Failed to start: %v", err))
			}
		}
	}
}

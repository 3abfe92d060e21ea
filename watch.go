// watch.go: 設定ファイルの変更監視。
// 変更を検出したらメインスレッドに再起動を依頼し、新しいキャプチャスレッドが読み直す。
package main

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce はエディタの連続書き込みをまとめる待ち時間。
const reloadDebounce = 200 * time.Millisecond

// configWatcher は設定ファイルのあるディレクトリを監視する。
type configWatcher struct {
	w        *fsnotify.Watcher
	file     string
	debounce time.Duration
	onChange func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// watchConfig は path の変更を監視し、落ち着いたら onChange を呼ぶ。
// ファイルの置き換え保存にも追従するためディレクトリ単位で監視する。
func watchConfig(path string, debounce time.Duration, onChange func()) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	cw := &configWatcher{
		w:        w,
		file:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

func (cw *configWatcher) loop() {
	defer close(cw.done)

	timer := time.NewTimer(cw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-cw.stop:
			return
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			configLog.Debugf("config event: %s", ev)
			timer.Reset(cw.debounce)
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			configLog.Warnf("config watcher: %v", err)
		case <-timer.C:
			configLog.Infof("config file changed, reloading")
			cw.onChange()
		}
	}
}

// Close は監視を停止する。
func (cw *configWatcher) Close() error {
	var err error
	cw.stopOnce.Do(func() {
		close(cw.stop)
		err = cw.w.Close()
		<-cw.done
	})
	return err
}

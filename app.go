// app.go: App 構造体・ライフサイクル管理。
// メインスレッドでキャプチャスレッドを開始・停止し、状態遷移を UI 側へ中継する。
package main

import (
	"errors"
	"fmt"
	"sync"
)

// Status はメインスレッドに届く状態遷移。
type Status int

const (
	StatusHookStarted Status = iota
	StatusHookStopped
	StatusCaptureStarted
	StatusCaptureStopped
)

func (s Status) String() string {
	switch s {
	case StatusHookStarted:
		return "hook-started"
	case StatusHookStopped:
		return "hook-stopped"
	case StatusCaptureStarted:
		return "capture-started"
	case StatusCaptureStopped:
		return "capture-stopped"
	default:
		return "unknown"
	}
}

// StatusFunc は状態遷移の通知先（トレイ等）。メインスレッドから呼ばれる。
// err は StatusCaptureStopped のとき、キャプチャスレッドの終了理由。
type StatusFunc func(s Status, err error)

// controlOp は他の goroutine からメインスレッドへ送る操作要求。
type controlOp uintptr

const (
	opStart controlOp = iota + 1
	opStop
	opPause
	opResume
)

var errNotRunning = errors.New("coastwheel: main thread loop is not running")

// captureThread は起動中のキャプチャスレッド。
type captureThread struct {
	id   threadID
	done chan struct{} // スレッド終了通知
	err  error         // 終了理由（mu で保護）
}

// App はキャプチャスレッドのライフサイクルを管理する。
type App struct {
	p          platform
	loadConfig func() Config
	onStatus   StatusFunc

	// スレッド間で共有する唯一の可変状態。
	// ブロックする呼び出しをまたいで保持しない。
	mu      sync.Mutex
	mainID  threadID
	running bool
	capture *captureThread
	pending bool // 停止完了後に再起動するか
}

// NewApp は App を初期化して返す。
func NewApp(p platform, loadConfig func() Config, onStatus StatusFunc) *App {
	if onStatus == nil {
		onStatus = func(Status, error) {}
	}
	return &App{
		p:          p,
		loadConfig: loadConfig,
		onStatus:   onStatus,
	}
}

// Run はメインスレッドのメッセージループを実行する。Quit() が呼ばれるまでブロックする。
// ループ開始直後にキャプチャスレッドを起動する。
func (a *App) Run() error {
	q, err := a.p.lockThread()
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.mainID = q.id()
	a.running = true
	a.mu.Unlock()

	a.Start()

	for {
		msg, ok := q.next()
		if !ok {
			break
		}
		a.dispatch(msg)
	}

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	a.shutdown()
	return nil
}

// dispatch はメインスレッドに届いたメッセージを処理する。
func (a *App) dispatch(msg message) {
	switch msg.id {
	case msgCaptureStarted:
		appLog.Infof("capture thread started")
		a.onStatus(StatusCaptureStarted, nil)
	case msgCaptureStopped:
		a.onCaptureStopped()
	case msgHookStarted:
		a.onStatus(StatusHookStarted, nil)
	case msgHookStopped:
		a.onStatus(StatusHookStopped, nil)
	case msgControl:
		a.do(controlOp(msg.wParam))
	}
}

// onCaptureStopped はキャプチャスレッドの終了を処理し、保留中なら再起動する。
func (a *App) onCaptureStopped() {
	a.mu.Lock()
	var exitErr error
	if a.capture != nil {
		exitErr = a.capture.err
	}
	a.capture = nil
	restart := a.pending
	a.pending = false
	a.mu.Unlock()

	if exitErr != nil {
		appLog.Errorf("capture thread stopped: %v", exitErr)
	} else {
		appLog.Infof("capture thread stopped")
	}
	a.onStatus(StatusCaptureStopped, exitErr)

	if restart {
		a.Start()
	}
}

func (a *App) do(op controlOp) {
	switch op {
	case opStart:
		a.Start()
	case opStop:
		a.Stop()
	case opPause:
		a.Pause()
	case opResume:
		if !a.Resume() {
			appLog.Errorf("resume failed")
		}
	default:
		appLog.Warnf("unknown control op %d", op)
	}
}

// Start は設定を読み込み、キャプチャスレッドを起動する。
// スレッドのメッセージキューができるまで待ってから戻る。
// スレッドを作れなければ StatusCaptureStopped をエラー付きで通知して false を返す。
func (a *App) Start() bool {
	a.mu.Lock()
	if a.capture != nil {
		a.mu.Unlock()
		appLog.Debugf("capture thread already running")
		return true
	}
	owner := a.mainID
	a.mu.Unlock()

	appLog.Infof("starting capture thread")
	cfg := a.loadConfig()

	t := &captureThread{done: make(chan struct{})}
	ready := make(chan error, 1)
	go a.runCapture(t, cfg, owner, ready)
	if err := <-ready; err != nil {
		// スレッドが作れなかった場合も停止として通知する
		appLog.Errorf("failed to create capture thread: %v", err)
		a.onStatus(StatusCaptureStopped, fmt.Errorf("create capture thread: %w", err))
		return false
	}

	a.mu.Lock()
	a.capture = t
	a.mu.Unlock()
	return true
}

// runCapture はキャプチャスレッド本体。終了時は必ず msgCaptureStopped を送る。
func (a *App) runCapture(t *captureThread, cfg Config, owner threadID, ready chan<- error) {
	defer close(t.done)

	q, err := a.p.lockThread()
	if err != nil {
		ready <- err
		return
	}
	t.id = q.id()
	if err := a.p.boostThread(); err != nil {
		appLog.Warnf("raise capture thread priority: %v", err)
	}
	ready <- nil

	defer func() {
		if err := a.p.post(owner, msgCaptureStopped, 0, 0); err != nil {
			appLog.Warnf("post capture-stopped: %v", err)
		}
	}()

	err = newCapture(a.p, cfg, q, owner).run()
	a.mu.Lock()
	t.err = err
	a.mu.Unlock()
}

// Stop はキャプチャスレッドに停止を要求する。再起動はしない。
func (a *App) Stop() {
	a.requestStop(false)
}

// Pause は Stop と同じ。再開は Resume で行う。
func (a *App) Pause() {
	a.requestStop(false)
}

// Resume はキャプチャスレッドを停止してから起動し直す（設定を読み直す）。
// スレッドが動いていなければその場で起動する。
func (a *App) Resume() bool {
	if a.requestStop(true) {
		return true
	}
	a.mu.Lock()
	a.pending = false
	a.mu.Unlock()
	return a.Start()
}

// requestStop は pending を設定して WM_QUIT を送る。
// スレッドが動いていなければ false を返す。
func (a *App) requestStop(restart bool) bool {
	a.mu.Lock()
	t := a.capture
	if t != nil {
		a.pending = restart
	}
	a.mu.Unlock()
	if t == nil {
		return false
	}
	if err := a.p.post(t.id, msgQuit, 0, 0); err != nil {
		// 既に終了処理中。msgCaptureStopped で pending が処理される
		appLog.Debugf("post quit to capture thread: %v", err)
	}
	return true
}

// Post は他の goroutine からメインスレッドへ操作を依頼する。
func (a *App) Post(op controlOp) error {
	a.mu.Lock()
	id, running := a.mainID, a.running
	a.mu.Unlock()
	if !running {
		return errNotRunning
	}
	return a.p.post(id, msgControl, uintptr(op), 0)
}

// Quit はメインスレッドのループを終了させる。
func (a *App) Quit() error {
	a.mu.Lock()
	id, running := a.mainID, a.running
	a.mu.Unlock()
	if !running {
		return errNotRunning
	}
	return a.p.post(id, msgQuit, 0, 0)
}

// shutdown はキャプチャスレッドを止めて終了を待つ。
func (a *App) shutdown() {
	a.mu.Lock()
	t := a.capture
	a.capture = nil
	a.pending = false
	a.mu.Unlock()
	if t == nil {
		return
	}
	if err := a.p.post(t.id, msgQuit, 0, 0); err != nil {
		appLog.Debugf("post quit to capture thread: %v", err)
	}
	<-t.done
	appLog.Infof("capture thread joined")
}

// eventtap.go: 中ボタンクリックを握りつぶすシステム全体のマウスフィルタ。
// フックはスレッドに紐づくため、専用スレッドで導入・解除しメッセージループを回す。
// ハンドルはスレッドの外に出さず、外からは開始と停止の合図だけを送る。
package main

import "fmt"

// passMarker はフィルタを素通りさせるイベントの dwExtraInfo。
const passMarker uintptr = 0x53534150 // "PASS"

// passFunc は中ボタンイベントを転送するかどうかを決める。
type passFunc func(hookEvent) bool

// markerPass は注入イベントのうち passMarker を持つものだけを通す。
func markerPass(ev hookEvent) bool {
	return ev.injected && ev.extraInfo == passMarker
}

// shouldSwallow はフックがイベントを消費するかを返す。
// 中ボタン以外は常に転送する。
func shouldSwallow(ev hookEvent, pass passFunc) bool {
	if ev.message != msgMButtonDown && ev.message != msgMButtonUp {
		return false
	}
	return !pass(ev)
}

// eventTap はフックスレッドへの参照。
type eventTap struct {
	p    platform
	id   threadID
	done chan struct{} // スレッド終了通知
	err  error         // done を閉じる前に書く
}

// startEventTap はフックスレッドを起動し、キューができるまで待つ。
// フックの導入完了は owner に msgHookStarted で通知される。
func startEventTap(p platform, owner threadID, pass passFunc) (*eventTap, error) {
	t := &eventTap{p: p, done: make(chan struct{})}
	started := make(chan error, 1)
	go t.run(owner, pass, started)
	if err := <-started; err != nil {
		return nil, err
	}
	return t, nil
}

func (t *eventTap) run(owner threadID, pass passFunc, started chan<- error) {
	defer close(t.done)

	q, err := t.p.lockThread()
	if err != nil {
		started <- err
		return
	}
	t.id = q.id()
	if err := t.p.boostThread(); err != nil {
		tapLog.Warnf("raise event tap thread priority: %v", err)
	}
	started <- nil

	// フックスレッドが終わったらキャプチャスレッドも止める
	defer func() {
		if err := t.p.post(owner, msgQuit, 0, 0); err != nil {
			tapLog.Debugf("post quit to capture thread: %v", err)
		}
	}()

	tapLog.Infof("installing low-level mouse hook")
	h, err := t.p.installFilter(pass)
	if err != nil {
		t.err = fmt.Errorf("install low-level mouse hook: %w", err)
		tapLog.Errorf("%v", t.err)
		return
	}
	defer func() {
		if err := t.p.uninstallFilter(h); err != nil {
			tapLog.Warnf("uninstall low-level mouse hook: %v", err)
		}
	}()

	if err := t.p.post(owner, msgHookStarted, 0, 0); err != nil {
		tapLog.Warnf("post hook-started: %v", err)
	}
	for {
		msg, ok := q.next()
		if !ok {
			break
		}
		tapLog.Debugf("received message: 0x%04x", msg.id)
	}
	tapLog.Infof("event tap thread exiting")
}

// stop はフックスレッドに WM_QUIT を送り、終了を待つ。
// フックの導入に失敗していた場合はそのエラーを返す。
func (t *eventTap) stop() error {
	if err := t.p.post(t.id, msgQuit, 0, 0); err != nil {
		// 既に終了している
		tapLog.Debugf("post quit to event tap thread: %v", err)
	}
	<-t.done
	return t.err
}

// capture.go: キャプチャスレッドのメッセージループ。
// Raw Input を受けて蓄積を更新し、一定間隔のティックで運動モデルを回してホイールイベントを注入する。
package main

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// tickInterval はティック間隔。タイマーの名目周期ではなく実測の経過時間で判定する。
const tickInterval = 10 * time.Millisecond

// captureState はキャプチャスレッドの状態フェーズ。
type captureState int

const (
	captureStarting     captureState = iota // リソース確保中
	captureAwaitingHook                     // フックスレッドの準備待ち
	captureActive                           // 入力処理中
	captureDraining                         // 後始末中
	captureStopped
)

func (s captureState) String() string {
	switch s {
	case captureStarting:
		return "starting"
	case captureAwaitingHook:
		return "awaiting-hook"
	case captureActive:
		return "active"
	case captureDraining:
		return "draining"
	default:
		return "stopped"
	}
}

// capture はキャプチャスレッド1回分の状態。生成したスレッドだけが触る。
type capture struct {
	p     platform
	cfg   Config
	queue threadQueue
	owner threadID // 状態遷移を通知するメインスレッド
	pass  passFunc

	phase captureState
	state scrollState
	acc   vec2i

	timer   timerID
	timerOn bool
	past    time.Time // 前回ティックの時刻
}

func newCapture(p platform, cfg Config, queue threadQueue, owner threadID) *capture {
	return &capture{
		p:     p,
		cfg:   cfg,
		queue: queue,
		owner: owner,
		pass:  markerPass,
	}
}

// run はリソースを確保してメッセージループを回し、WM_QUIT で後始末して戻る。
// 確保に失敗した場合はそこまでに確保したものを解放してエラーを返す。
func (c *capture) run() (err error) {
	c.phase = captureStarting
	var teardown *multierror.Error
	defer func() {
		c.phase = captureStopped
		if terr := teardown.ErrorOrNil(); terr != nil {
			captureLog.Warnf("teardown: %v", terr)
		}
	}()

	if err := c.p.enableDPIAwareness(); err != nil {
		return fmt.Errorf("enable per-monitor DPI awareness: %w", err)
	}

	wnd, err := c.p.createMessageWindow()
	if err != nil {
		return fmt.Errorf("create raw input window: %w", err)
	}
	defer func() {
		teardown = multierror.Append(teardown, c.p.destroyWindow(wnd))
	}()

	if err := c.p.registerRawMouse(wnd); err != nil {
		return fmt.Errorf("register raw mouse input: %w", err)
	}
	defer func() {
		teardown = multierror.Append(teardown, c.p.unregisterRawMouse())
	}()

	tap, err := startEventTap(c.p, c.queue.id(), c.pass)
	if err != nil {
		return fmt.Errorf("start event tap thread: %w", err)
	}
	hookStarted := false
	defer func() {
		// フックの導入失敗は起動失敗として返す
		if terr := tap.stop(); terr != nil && err == nil {
			err = terr
		}
		if hookStarted {
			c.notify(msgHookStopped)
		}
	}()

	// 終了経路にかかわらずカーソル制限とタイマーを解除する
	defer func() {
		c.phase = captureDraining
		if c.state.dragging {
			c.state.dragging = false
			c.releaseClip()
		}
		c.stopTimer()
	}()

	c.notify(msgCaptureStarted)
	captureLog.Infof("capture thread running (decay=%.0f sensY=%d sensX=%d flick=%t)",
		c.cfg.DecayRate, c.cfg.SensitivityY, c.cfg.SensitivityX, c.cfg.Flick)

	c.phase = captureAwaitingHook
	c.past = c.p.now()
	for {
		msg, ok := c.queue.next()
		if !ok {
			break
		}
		if c.handle(msg) {
			hookStarted = true
		}
	}
	captureLog.Infof("capture thread exiting")
	return nil
}

// handle はメッセージ1件を処理する。フックの準備完了を受け取ったら true を返す。
func (c *capture) handle(msg message) (hookReady bool) {
	if c.phase == captureAwaitingHook {
		// フックが入るまではドラッグを処理しない
		if msg.id != msgHookStarted {
			return false
		}
		c.phase = captureActive
		c.notify(msgHookStarted)
		return true
	}

	if msg.id == msgInput {
		if m, ok := c.p.readRawMouse(msg.lParam); ok {
			c.onRawMouse(m)
		}
	}
	c.maybeTick()
	return false
}

// maybeTick は前回ティックから tickInterval を超えていればティックを実行する。
func (c *capture) maybeTick() {
	now := c.p.now()
	dt := now.Sub(c.past)
	if dt <= tickInterval {
		return
	}
	c.tick(dt.Seconds())
	c.past = now
}

// tick は蓄積を運動モデルに流し、整数化した放出量を1回の SendInput で注入する。
func (c *capture) tick(dt float64) {
	if c.state.dragging {
		c.reassertClip()
	}
	captureLog.Debugf("tick: dt=%.1fms vel=(%.2f, %.2f) acc=(%d, %d)",
		dt*1000, c.state.vel.x, c.state.vel.y, c.acc.x, c.acc.y)

	send := toSteps(c.state.step(c.acc, dt, c.cfg))
	c.acc = vec2i{}
	if !send.isZero() {
		// 注入失敗は次のティックの速度が補うので巻き戻さない
		if err := c.p.sendInput(wheelEvents(send)); err != nil {
			captureLog.Warnf("inject scroll (%d, %d) failed: %v", send.x, send.y, err)
		}
	}

	if c.state.atRest() && !c.state.dragging {
		c.stopTimer()
	}
}

// ensureTimer はティックタイマーを動かす。起動時は基準時刻も取り直す。
func (c *capture) ensureTimer() {
	if c.timerOn {
		return
	}
	id, err := c.p.startTimer(tickInterval)
	if err != nil {
		captureLog.Warnf("start tick timer failed: %v", err)
		return
	}
	c.timer = id
	c.timerOn = true
	c.past = c.p.now()
}

func (c *capture) stopTimer() {
	if !c.timerOn {
		return
	}
	if err := c.p.stopTimer(c.timer); err != nil {
		captureLog.Warnf("stop tick timer failed: %v", err)
		return
	}
	c.timerOn = false
}

// notify はメインスレッドに状態遷移を通知する。
func (c *capture) notify(msg uint32) {
	if err := c.p.post(c.owner, msg, 0, 0); err != nil {
		captureLog.Warnf("post 0x%04x to main thread failed: %v", msg, err)
	}
}

// drag.go: Raw Input のマウスレコード処理。
// ホイールとドラッグの2系統を同じティック蓄積に合流させ、中ボタンでドラッグを開始・終了する。
package main

// usButtonFlags のビット
const (
	riMiddleButtonDown uint16 = 0x0010
	riMiddleButtonUp   uint16 = 0x0020
	riMouseWheel       uint16 = 0x0400
)

// cancelKey はボタンアップ後に送る無害なキー（仮想キー 0）。
// ホスト側が抑止したクリックからコンテキスト操作を始めるのを打ち消す。
const cancelKey uint16 = 0

// onRawMouse は WM_INPUT 1件を処理する。キャプチャスレッドからのみ呼ぶ。
func (c *capture) onRawMouse(m rawMouse) {
	// 自分の注入イベントを含む合成入力は無視する
	if m.synthetic {
		return
	}

	flags := m.buttonFlags
	switch {
	case flags&riMouseWheel != 0:
		c.onWheel(m.buttonData)
	case flags&riMiddleButtonDown != 0:
		c.onDragStart()
	case flags&riMiddleButtonUp != 0:
		c.onDragEnd()
	case flags == 0 && c.state.dragging:
		c.acc.x += m.lastX
		c.acc.y += m.lastY
	}
}

// onWheel はホイール量を sensY/120 倍して縦の蓄積に加える。
// エンジン側でも感度を掛けるため、ホイールには感度が二重に効く。
func (c *capture) onWheel(delta int16) {
	inc := float64(delta) * float64(c.cfg.SensitivityY) / wheelDelta
	c.acc.y += int32(inc)
	captureLog.Debugf("wheel: delta=%d increment=%.2f", delta, inc)
	c.ensureTimer()
}

// onDragStart はカーソル位置に 1x1 の制限矩形を設定してドラッグを開始する。
func (c *capture) onDragStart() {
	c.state.dragging = true
	c.state.cancelPending = true
	c.acc = vec2i{}

	pos, err := c.p.cursorPos()
	if err != nil {
		captureLog.Warnf("cursor position unavailable: %v", err)
	}
	c.state.clip = rect{pos.x, pos.y, pos.x + 1, pos.y + 1}
	if err := c.p.clipCursor(&c.state.clip); err != nil {
		captureLog.Warnf("clip cursor failed: %v", err)
	}
	c.ensureTimer()
}

// onDragEnd はドラッグを終了し、制限矩形を解除する。
// flick が無効なら慣性も止める。
func (c *capture) onDragEnd() {
	c.state.dragging = false
	if !c.cfg.Flick {
		c.state.vel = vec2f{}
		c.state.res = vec2f{}
		c.acc = vec2i{}
		c.stopTimer()
	}
	if c.state.cancelPending {
		c.state.cancelPending = false
		cancel := []syntheticEvent{
			{kind: injectKeyDown, vk: cancelKey},
			{kind: injectKeyUp, vk: cancelKey},
		}
		if err := c.p.sendInput(cancel); err != nil {
			captureLog.Warnf("cancel keystroke failed: %v", err)
		}
	}
	c.releaseClip()
}

// releaseClip はカーソル制限を解除する。
func (c *capture) releaseClip() {
	if err := c.p.clipCursor(nil); err != nil {
		captureLog.Warnf("release clip failed: %v", err)
	}
}

// reassertClip はドラッグ中に OS が制限を外していたら再設定する。
func (c *capture) reassertClip() {
	current, err := c.p.clipRect()
	if err == nil && current == c.state.clip {
		return
	}
	if err := c.p.clipCursor(&c.state.clip); err != nil {
		captureLog.Warnf("re-clip cursor failed: %v", err)
	}
}

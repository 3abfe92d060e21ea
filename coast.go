// coast.go: 慣性スクロールの運動モデル。
// 1ティック分の生デルタを速度に加え、減衰しながらスクロール量として放出する。
package main

import "math"

// 慣性パラメータ
const (
	restThreshold = 0.1 // |v|² がこれ未満なら停止
	wheelDelta    = 120 // ホイール1ノッチの単位量
)

type vec2f struct{ x, y float64 }

type vec2i struct{ x, y int32 }

func (v vec2i) isZero() bool { return v.x == 0 && v.y == 0 }

// scrollState はキャプチャスレッドが専有するスクロール状態。
type scrollState struct {
	vel vec2f // 速度
	// res は端数補正用の予約領域。現状は常にゼロ。
	res vec2f

	clip          rect // ドラッグ中のカーソル制限矩形
	dragging      bool // 中ボタンドラッグ中か
	cancelPending bool // ボタンアップ時にキャンセル用キー入力を送るか
}

// decayFactors は減衰率 mu と経過時間 dt から減衰係数 f0 と放出係数 f1 を返す。
// mu == 0 は極限値 (1, dt) を直接返す（ゼロ除算回避）。
func decayFactors(mu, dt float64) (f0, f1 float64) {
	if mu == 0 {
		return 1, dt
	}
	f0 = math.Exp(-mu * dt)
	f1 = (1 - f0) / mu
	return f0, f1
}

// step は蓄積デルタを速度に加え、今ティックの放出量を返す。
// 速度は f0 倍に減衰し、十分小さくなったらゼロにする。
func (s *scrollState) step(acc vec2i, dt float64, cfg Config) vec2f {
	s.vel.x += float64(cfg.SensitivityX) * float64(acc.x)
	s.vel.y += float64(cfg.SensitivityY) * float64(acc.y)

	f0, f1 := decayFactors(cfg.DecayRate, dt)
	send := vec2f{s.vel.x * f1, s.vel.y * f1}
	s.vel.x *= f0
	s.vel.y *= f0

	if s.vel.x*s.vel.x+s.vel.y*s.vel.y < restThreshold {
		s.vel = vec2f{}
	}
	return send
}

// atRest は速度がゼロか。
func (s *scrollState) atRest() bool {
	return s.vel == vec2f{}
}

// toSteps は放出量をゼロ方向に切り捨てて整数化する。
func toSteps(v vec2f) vec2i {
	return vec2i{int32(v.x), int32(v.y)}
}

// wheelEvents は放出量を SendInput 用のホイールイベントに変換する。
// 0 の軸は含めない。
func wheelEvents(send vec2i) []syntheticEvent {
	var events []syntheticEvent
	if send.y != 0 {
		events = append(events, syntheticEvent{kind: injectWheel, data: send.y})
	}
	if send.x != 0 {
		events = append(events, syntheticEvent{kind: injectHWheel, data: send.x})
	}
	return events
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCapture はメッセージループを介さずに handle を直接呼ぶためのキャプチャ。
func newTestCapture(f *fakePlatform, cfg Config) (*capture, *fakeQueue) {
	owner := f.newQueue()
	q := f.newQueue()
	c := newCapture(f, cfg, q, owner.tid)
	c.phase = captureActive
	c.past = f.now()
	return c, owner
}

// feed は Raw Input レコードを WM_INPUT として handle に渡す。
func feed(c *capture, f *fakePlatform, m rawMouse) {
	f.setRaw(1, m)
	c.handle(message{id: msgInput, lParam: 1})
}

func middleDown() rawMouse       { return rawMouse{buttonFlags: riMiddleButtonDown} }
func middleUp() rawMouse         { return rawMouse{buttonFlags: riMiddleButtonUp} }
func motion(x, y int32) rawMouse { return rawMouse{lastX: x, lastY: y} }
func wheel(delta int16) rawMouse {
	return rawMouse{buttonFlags: riMouseWheel, buttonData: delta}
}

func TestDragStartConfinesCursor(t *testing.T) {
	f := newFakePlatform()
	c, _ := newTestCapture(f, defaultConfig())

	feed(c, f, middleDown())

	assert.True(t, c.state.dragging)
	assert.True(t, c.state.cancelPending)
	require.NotNil(t, f.currentClip())
	assert.Equal(t, rect{640, 360, 641, 361}, *f.currentClip())
	assert.True(t, c.timerOn)
	assert.Equal(t, 1, f.activeTimers())
}

func TestDragMotionAccumulates(t *testing.T) {
	f := newFakePlatform()
	c, _ := newTestCapture(f, defaultConfig())

	// ドラッグ前の動きは無視
	feed(c, f, motion(3, 3))
	assert.Equal(t, vec2i{}, c.acc)

	feed(c, f, middleDown())
	feed(c, f, motion(2, 5))
	feed(c, f, motion(-1, 4))
	assert.Equal(t, vec2i{x: 1, y: 9}, c.acc)

	// ボタン状態を含むレコードは動きとして数えない
	feed(c, f, rawMouse{buttonFlags: 0x0001, lastX: 10, lastY: 10})
	assert.Equal(t, vec2i{x: 1, y: 9}, c.acc)
}

func TestSyntheticInputIgnored(t *testing.T) {
	f := newFakePlatform()
	c, _ := newTestCapture(f, defaultConfig())

	feed(c, f, rawMouse{synthetic: true, buttonFlags: riMiddleButtonDown})
	assert.False(t, c.state.dragging)

	feed(c, f, rawMouse{synthetic: true, buttonFlags: riMouseWheel, buttonData: 120})
	assert.Equal(t, vec2i{}, c.acc)
	assert.Nil(t, f.currentClip())
}

func TestDragEnd(t *testing.T) {
	t.Run("without flick", func(t *testing.T) {
		f := newFakePlatform()
		c, _ := newTestCapture(f, defaultConfig())

		feed(c, f, middleDown())
		feed(c, f, motion(0, 30))
		f.advance(16 * time.Millisecond)
		c.handle(message{id: msgTimer})
		require.False(t, c.state.atRest())

		feed(c, f, middleUp())

		assert.False(t, c.state.dragging)
		assert.True(t, c.state.atRest())
		assert.Equal(t, vec2f{}, c.state.res)
		assert.False(t, c.timerOn)
		assert.Equal(t, 0, f.activeTimers())
		assert.Nil(t, f.currentClip())

		inputs := f.injected()
		require.NotEmpty(t, inputs)
		assert.Equal(t, []syntheticEvent{
			{kind: injectKeyDown, vk: cancelKey},
			{kind: injectKeyUp, vk: cancelKey},
		}, inputs[len(inputs)-1])
	})

	t.Run("with flick keeps coasting", func(t *testing.T) {
		f := newFakePlatform()
		cfg := defaultConfig()
		cfg.Flick = true
		c, _ := newTestCapture(f, cfg)

		feed(c, f, middleDown())
		feed(c, f, motion(0, 30))
		f.advance(16 * time.Millisecond)
		c.handle(message{id: msgTimer})

		feed(c, f, middleUp())

		assert.False(t, c.state.dragging)
		assert.False(t, c.state.atRest())
		assert.True(t, c.timerOn)
		assert.Nil(t, f.currentClip())

		// ボタンを離した後も放出が続く
		before := len(f.injected())
		f.advance(16 * time.Millisecond)
		c.handle(message{id: msgTimer})
		assert.Greater(t, len(f.injected()), before)
	})

	t.Run("cancel keystroke once per press", func(t *testing.T) {
		f := newFakePlatform()
		c, _ := newTestCapture(f, defaultConfig())

		feed(c, f, middleDown())
		feed(c, f, middleUp())
		feed(c, f, middleUp())

		keys := 0
		for _, batch := range f.injected() {
			for _, ev := range batch {
				if ev.kind == injectKeyDown {
					keys++
				}
			}
		}
		assert.Equal(t, 1, keys)
	})
}

func TestClipReassertedDuringDrag(t *testing.T) {
	f := newFakePlatform()
	c, _ := newTestCapture(f, defaultConfig())

	feed(c, f, middleDown())
	want := *f.currentClip()

	// OS がフォーカス変更などで制限を外した
	require.NoError(t, f.clipCursor(nil))

	f.advance(16 * time.Millisecond)
	c.handle(message{id: msgTimer})

	require.NotNil(t, f.currentClip())
	assert.Equal(t, want, *f.currentClip())
}

func TestWheelPrescaled(t *testing.T) {
	f := newFakePlatform()
	c, _ := newTestCapture(f, defaultConfig())

	feed(c, f, wheel(120))
	assert.Equal(t, vec2i{y: 18}, c.acc)
	assert.True(t, c.timerOn)

	feed(c, f, wheel(-240))
	assert.Equal(t, vec2i{y: -18}, c.acc)

	// 端数はゼロ方向に切り捨て
	c.acc = vec2i{}
	feed(c, f, wheel(10))
	assert.Equal(t, vec2i{y: 1}, c.acc)
}

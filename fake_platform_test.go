package main

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePlatform は goroutine とチャネルでスレッドキューを模した platform。
// 副作用（カーソル制限・注入・タイマー）は記録するだけ。
type fakePlatform struct {
	mu     sync.Mutex
	queues map[threadID]*fakeQueue
	nextID threadID

	clock  time.Time
	cursor point
	clip   *rect
	clips  []*rect // clipCursor の呼び出し履歴
	inputs [][]syntheticEvent
	raw    map[uintptr]rawMouse

	timers    map[timerID]bool
	nextTimer timerID

	windows    int
	registered bool
	filter     passFunc
	unhookGate chan struct{} // 閉じるまでフック解除（＝キャプチャスレッドの終了）を止める

	failDPI      error
	failRegister error
	failInstall  error
	failLock     int // 0 以外なら lockThread の呼び出しが failLock 回目以降で失敗
	lockCalls    int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		queues: make(map[threadID]*fakeQueue),
		nextID: 100,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		cursor: point{640, 360},
		raw:    make(map[uintptr]rawMouse),
		timers: make(map[timerID]bool),
	}
}

type fakeQueue struct {
	tid threadID
	ch  chan message
}

func (q *fakeQueue) id() threadID { return q.tid }

func (q *fakeQueue) next() (message, bool) {
	msg := <-q.ch
	if msg.id == msgQuit {
		return message{}, false
	}
	return msg, true
}

// newQueue はテストの goroutine 用にキューを作る。
func (f *fakePlatform) newQueue() *fakeQueue {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	q := &fakeQueue{tid: f.nextID, ch: make(chan message, 256)}
	f.queues[q.tid] = q
	return q
}

func (f *fakePlatform) lockThread() (threadQueue, error) {
	f.mu.Lock()
	f.lockCalls++
	fail := f.failLock != 0 && f.lockCalls >= f.failLock
	f.mu.Unlock()
	if fail {
		return nil, errors.New("no more threads")
	}
	return f.newQueue(), nil
}

func (f *fakePlatform) boostThread() error { return nil }

func (f *fakePlatform) post(to threadID, msg uint32, wParam, lParam uintptr) error {
	f.mu.Lock()
	q, ok := f.queues[to]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("no thread %d", to)
	}
	select {
	case q.ch <- message{id: msg, wParam: wParam, lParam: lParam}:
		return nil
	default:
		return fmt.Errorf("queue of thread %d is full", to)
	}
}

func (f *fakePlatform) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *fakePlatform) advance(d time.Duration) {
	f.mu.Lock()
	f.clock = f.clock.Add(d)
	f.mu.Unlock()
}

func (f *fakePlatform) enableDPIAwareness() error { return f.failDPI }

func (f *fakePlatform) createMessageWindow() (windowHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows++
	return windowHandle(f.windows), nil
}

func (f *fakePlatform) destroyWindow(windowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows--
	return nil
}

func (f *fakePlatform) registerRawMouse(windowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRegister != nil {
		return f.failRegister
	}
	f.registered = true
	return nil
}

func (f *fakePlatform) unregisterRawMouse() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = false
	return nil
}

// setRaw は lParam に対応する Raw Input レコードを用意する。
func (f *fakePlatform) setRaw(lParam uintptr, m rawMouse) {
	f.mu.Lock()
	f.raw[lParam] = m
	f.mu.Unlock()
}

func (f *fakePlatform) readRawMouse(lParam uintptr) (rawMouse, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.raw[lParam]
	return m, ok
}

func (f *fakePlatform) startTimer(time.Duration) (timerID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTimer++
	f.timers[f.nextTimer] = true
	return f.nextTimer, nil
}

func (f *fakePlatform) stopTimer(t timerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.timers[t] {
		return fmt.Errorf("timer %d not running", t)
	}
	delete(f.timers, t)
	return nil
}

func (f *fakePlatform) activeTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

func (f *fakePlatform) cursorPos() (point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *fakePlatform) clipCursor(r *rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r == nil {
		f.clip = nil
	} else {
		c := *r
		f.clip = &c
	}
	f.clips = append(f.clips, f.clip)
	return nil
}

func (f *fakePlatform) clipRect() (rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clip == nil {
		return rect{-32768, -32768, 32767, 32767}, nil
	}
	return *f.clip, nil
}

// currentClip は現在のカーソル制限（解除中は nil）。
func (f *fakePlatform) currentClip() *rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clip
}

func (f *fakePlatform) sendInput(events []syntheticEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, append([]syntheticEvent(nil), events...))
	return nil
}

func (f *fakePlatform) injected() [][]syntheticEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]syntheticEvent(nil), f.inputs...)
}

func (f *fakePlatform) installFilter(pass passFunc) (filterHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInstall != nil {
		return 0, f.failInstall
	}
	f.filter = pass
	return 1, nil
}

func (f *fakePlatform) uninstallFilter(filterHandle) error {
	f.mu.Lock()
	gate := f.unhookGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = nil
	return nil
}

func (f *fakePlatform) filterInstalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter != nil
}

// expectMessage は q から次のメッセージを受け取り、id を確認する。
func expectMessage(t *testing.T, q *fakeQueue, id uint32) message {
	t.Helper()
	select {
	case msg := <-q.ch:
		require.Equal(t, fmt.Sprintf("0x%04x", id), fmt.Sprintf("0x%04x", msg.id))
		return msg
	case <-time.After(2 * time.Second):
		require.FailNowf(t, "timeout", "waiting for message 0x%04x", id)
		return message{}
	}
}

package winapi

import (
	"sync/atomic"
	"time"
)

// RawKeyboard records keyboard activity reported through raw input, which the
// system keeps delivering even after it drops a slow keyboard hook.
type RawKeyboard struct {
	hwnd uintptr
	last atomic.Int64
	now  func() time.Time
}

// NewRawKeyboard returns an unregistered activity clock.
func NewRawKeyboard() *RawKeyboard {
	return &RawKeyboard{now: time.Now}
}

// Observe records one raw keyboard input message.
func (k *RawKeyboard) Observe() {
	k.last.Store(k.now().UnixNano())
}

// LastKeyInput implements detector.ActivityClock.
func (k *RawKeyboard) LastKeyInput() (time.Time, bool) {
	v := k.last.Load()
	if v == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, v), true
}

// LastInputClock reports the system-wide last input time from
// GetLastInputInfo. Mouse movement counts as input too, so it is only used
// when raw keyboard input cannot be registered.
type LastInputClock struct {
	now   func() time.Time
	ticks func() (now, lastInput uint32, ok bool)
}

// NewLastInputClock returns a clock backed by GetLastInputInfo.
func NewLastInputClock() *LastInputClock {
	return &LastInputClock{now: time.Now, ticks: lastInputTicks}
}

// LastKeyInput implements detector.ActivityClock.
func (c *LastInputClock) LastKeyInput() (time.Time, bool) {
	nowTick, inputTick, ok := c.ticks()
	if !ok {
		return time.Time{}, false
	}
	return inputTime(c.now(), nowTick, inputTick), true
}

// inputTime maps a tick count onto wall time. Tick counts wrap after about
// 49.7 days; unsigned subtraction keeps the elapsed time correct across one wrap.
func inputTime(now time.Time, nowTick, inputTick uint32) time.Time {
	elapsed := time.Duration(nowTick-inputTick) * time.Millisecond
	return now.Add(-elapsed)
}

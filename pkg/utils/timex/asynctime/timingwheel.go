// Package asynctime 进程级时间轮
package asynctime

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

var tw = timingwheel.NewTimingWheel(time.Millisecond, 512)

func init() {
	tw.Start()
}

// AfterFunc d 之后在时间轮协程中执行 f
func AfterFunc(d time.Duration, f func()) *timingwheel.Timer {
	return tw.AfterFunc(d, f)
}

// After d 之后关闭返回的 channel
func After(d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	tw.AfterFunc(d, func() {
		close(ch)
	})
	return ch
}

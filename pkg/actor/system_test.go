package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dzm2020/crimson/pkg/lib/grs"
	"github.com/dzm2020/crimson/pkg/utils/serializer"
)

// recorder 收集事件，只在路由协程中写入，Run 返回后读取
type recorder struct {
	events []SystemEvent
	hook   func(SystemEvent)
}

func (r *recorder) observe(event SystemEvent) {
	r.events = append(r.events, event)
	if r.hook != nil {
		r.hook(event)
	}
}

func (r *recorder) filter(kind EventKind) []SystemEvent {
	var out []SystemEvent
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func runSystem[T any](t *testing.T, sys *System[T], observer Observer) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- sys.Run(observer)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run 返回错误: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run 未在限定时间内返回")
	}
}

// recvN 读取 n 条消息后返回
func recvN[T any](n int, out *[]T) ActorFunc[T] {
	return func(_ *Sender[T], receiver *Receiver[T]) {
		for i := 0; i < n; i++ {
			v, ok := receiver.Recv()
			if !ok {
				return
			}
			*out = append(*out, v)
		}
	}
}

func TestSystem_SendInOrder(t *testing.T) {
	sys := NewSystem[int]()
	var got []int

	_ = sys.MountFunc("A", func(sender *Sender[int], _ *Receiver[int]) {
		for i := 1; i <= 3; i++ {
			if err := sender.Send("B", i); err != nil {
				t.Errorf("发送失败: %v", err)
			}
		}
	})
	_ = sys.Mount("B", recvN(3, &got))

	rec := &recorder{}
	runSystem(t, sys, rec.observe)

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("期望 B 收到 [1 2 3]，实际为 %v", got)
	}
	if n := len(rec.filter(EventStarted)); n != 2 {
		t.Errorf("期望 2 个 Started，实际为 %d", n)
	}
	if n := len(rec.filter(EventStopped)); n != 2 {
		t.Errorf("期望 2 个 Stopped，实际为 %d", n)
	}
	forwards := rec.filter(EventForward)
	if len(forwards) != 3 {
		t.Fatalf("期望 3 个 Forward，实际为 %d", len(forwards))
	}
	for _, f := range forwards {
		if f.From != "A" || f.To != "B" || f.Index != 0 {
			t.Errorf("Forward 不符合预期: %v", f)
		}
	}
	if errs := rec.filter(EventError); len(errs) != 0 {
		t.Errorf("不应有错误事件: %v", errs)
	}

	stats := sys.Stats()
	if stats.Mounted != 2 || stats.Forwarded != 3 || stats.Delivered != 3 || stats.Errors != 0 {
		t.Errorf("统计不符合预期: %+v", stats)
	}
}

func TestSystem_LongSequenceKeepsOrder(t *testing.T) {
	const n = 200
	sys := NewSystem[int]()
	var got []int

	_ = sys.MountFunc("src", func(sender *Sender[int], _ *Receiver[int]) {
		for i := 0; i < n; i++ {
			_ = sender.Send("dst", i)
		}
	})
	_ = sys.Mount("dst", recvN(n, &got))
	runSystem(t, sys, nil)

	if len(got) != n {
		t.Fatalf("期望收到 %d 条，实际为 %d", n, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("第 %d 条期望 %d，实际为 %d", i, i, v)
		}
	}
}

func TestSystem_RoundRobinPool(t *testing.T) {
	sys := NewSystem[int]()
	var c1, c2 []int

	_ = sys.Mount("C", recvN(2, &c1))
	_ = sys.Mount("C", recvN(2, &c2))
	_ = sys.MountFunc("D", func(sender *Sender[int], _ *Receiver[int]) {
		for i := 1; i <= 4; i++ {
			_ = sender.Send("C", i)
		}
	})

	rec := &recorder{}
	runSystem(t, sys, rec.observe)

	if len(c1) != 2 || c1[0] != 1 || c1[1] != 3 {
		t.Errorf("期望 C1 收到 [1 3]，实际为 %v", c1)
	}
	if len(c2) != 2 || c2[0] != 2 || c2[1] != 4 {
		t.Errorf("期望 C2 收到 [2 4]，实际为 %v", c2)
	}
	var indexes []int
	for _, f := range rec.filter(EventForward) {
		indexes = append(indexes, f.Index)
	}
	want := []int{0, 1, 0, 1}
	if len(indexes) != len(want) {
		t.Fatalf("期望 Forward 下标 %v，实际为 %v", want, indexes)
	}
	for i := range want {
		if indexes[i] != want[i] {
			t.Fatalf("期望 Forward 下标 %v，实际为 %v", want, indexes)
		}
	}
}

func TestSystem_RoundRobinFullCycle(t *testing.T) {
	const workers, rounds = 3, 4
	sys := NewSystem[int]()
	got := make([][]int, workers)

	for i := 0; i < workers; i++ {
		_ = sys.Mount("W", recvN(rounds, &got[i]))
	}
	_ = sys.MountFunc("client", func(sender *Sender[int], _ *Receiver[int]) {
		for i := 0; i < workers*rounds; i++ {
			_ = sender.Send("W", i)
		}
	})

	rec := &recorder{}
	runSystem(t, sys, rec.observe)

	for w := 0; w < workers; w++ {
		if len(got[w]) != rounds {
			t.Fatalf("worker %d 期望收到 %d 条，实际为 %v", w, rounds, got[w])
		}
		for r, v := range got[w] {
			if v != r*workers+w {
				t.Errorf("worker %d 第 %d 条期望 %d，实际为 %d", w, r, r*workers+w, v)
			}
		}
	}
	for i, f := range rec.filter(EventForward) {
		if f.Index != i%workers {
			t.Errorf("第 %d 个 Forward 期望下标 %d，实际为 %d", i, i%workers, f.Index)
		}
	}
}

func TestSystem_UnknownAddress(t *testing.T) {
	sys := NewSystem[string]()
	_ = sys.MountFunc("E", func(sender *Sender[string], _ *Receiver[string]) {
		if err := sender.Send("F", "hello"); err != nil {
			t.Errorf("发往 system 不应失败: %v", err)
		}
		if err := sender.Publish("F", "hello"); err != nil {
			t.Errorf("发往 system 不应失败: %v", err)
		}
	})

	rec := &recorder{}
	runSystem(t, sys, rec.observe)

	errs := rec.filter(EventError)
	if len(errs) != 2 {
		t.Fatalf("期望 2 个错误事件，实际为 %v", errs)
	}
	for _, e := range errs {
		if e.Address != "F" || e.Reason != "does not exist" || !errors.Is(e.Err, ErrAddressNotFound) {
			t.Errorf("错误事件不符合预期: %v", e)
		}
		if e.String() != "Error(F, does not exist)" {
			t.Errorf("错误事件格式不符合预期: %s", e)
		}
	}
}

func TestSystem_Publish(t *testing.T) {
	sys := NewSystem[int]()
	got := make([][]int, 3)
	for i := range got {
		_ = sys.Mount("H", recvN(1, &got[i]))
	}
	_ = sys.MountFunc("G", func(sender *Sender[int], _ *Receiver[int]) {
		_ = sender.Publish("H", 42)
	})

	rec := &recorder{}
	runSystem(t, sys, rec.observe)

	for i, g := range got {
		if len(g) != 1 || g[0] != 42 {
			t.Errorf("H%d 期望收到 [42]，实际为 %v", i+1, g)
		}
	}
	forwards := rec.filter(EventForward)
	if len(forwards) != 3 {
		t.Fatalf("期望 3 个 Forward，实际为 %v", forwards)
	}
	for i, f := range forwards {
		if f.From != "G" || f.To != "H" || f.Index != i {
			t.Errorf("Forward 不符合预期: %v", f)
		}
	}
}

func TestSystem_PublishSkipsFinishedEndpoint(t *testing.T) {
	sys := NewSystem[int]()
	gate := make(chan struct{})
	var first, third []int

	_ = sys.Mount("H", recvN(1, &first))
	_ = sys.MountFunc("H", func(*Sender[int], *Receiver[int]) {})
	_ = sys.Mount("H", recvN(1, &third))
	_ = sys.MountFunc("G", func(sender *Sender[int], _ *Receiver[int]) {
		<-gate
		_ = sender.Publish("H", 7)
	})

	var once sync.Once
	rec := &recorder{hook: func(e SystemEvent) {
		if e.Kind == EventStopped && e.Address == "H" {
			once.Do(func() { close(gate) })
		}
	}}
	runSystem(t, sys, rec.observe)

	if len(first) != 1 || len(third) != 1 {
		t.Errorf("存活的 endpoint 应收到消息: %v %v", first, third)
	}
	errs := rec.filter(EventError)
	if len(errs) != 1 || errs[0].Reason != "send error" || !errors.Is(errs[0].Err, ErrDeliveryFailed) {
		t.Errorf("期望 1 个 send error，实际为 %v", errs)
	}
	if n := len(rec.filter(EventForward)); n != 3 {
		t.Errorf("期望 3 个 Forward，实际为 %d", n)
	}
}

func TestSystem_SendToFinishedActor(t *testing.T) {
	sys := NewSystem[int]()
	gate := make(chan struct{})

	_ = sys.MountFunc("X", func(*Sender[int], *Receiver[int]) {})
	_ = sys.MountFunc("Y", func(sender *Sender[int], _ *Receiver[int]) {
		<-gate
		_ = sender.Send("X", 1)
	})

	rec := &recorder{hook: func(e SystemEvent) {
		if e.Kind == EventStopped && e.Address == "X" {
			close(gate)
		}
	}}
	runSystem(t, sys, rec.observe)

	errs := rec.filter(EventError)
	if len(errs) != 1 || errs[0].Address != "X" || errs[0].Reason != "send error" {
		t.Errorf("期望 Error(X, send error)，实际为 %v", errs)
	}
}

func TestSystem_RunWaitsForEveryActor(t *testing.T) {
	sys := NewSystem[int]()
	release := make(chan struct{})
	_ = sys.MountFunc("fast", func(*Sender[int], *Receiver[int]) {})
	_ = sys.MountFunc("slow", func(*Sender[int], *Receiver[int]) { <-release })

	done := make(chan error, 1)
	go func() { done <- sys.Run(nil) }()

	select {
	case <-done:
		t.Fatal("仍有 actor 运行时 Run 不应返回")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run 返回错误: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("所有 actor 结束后 Run 应返回")
	}
}

func TestSystem_MountAfterRun(t *testing.T) {
	sys := NewSystem[int]()
	release := make(chan struct{})
	started := make(chan struct{})
	_ = sys.MountFunc("A", func(*Sender[int], *Receiver[int]) { <-release })

	done := make(chan error, 1)
	go func() {
		done <- sys.Run(func(e SystemEvent) {
			if e.Kind == EventStarted {
				close(started)
			}
		})
	}()
	<-started

	if err := sys.MountFunc("B", func(*Sender[int], *Receiver[int]) {}); !errors.Is(err, ErrSystemStarted) {
		t.Errorf("Run 之后 Mount 应返回 ErrSystemStarted，实际为 %v", err)
	}
	if err := sys.Run(nil); !errors.Is(err, ErrSystemStarted) {
		t.Errorf("重复 Run 应返回 ErrSystemStarted，实际为 %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("Run 返回错误: %v", err)
	}
	if err := sys.Run(nil); !errors.Is(err, ErrSystemStarted) {
		t.Errorf("结束后 Run 应返回 ErrSystemStarted，实际为 %v", err)
	}
}

func TestSystem_NoActors(t *testing.T) {
	sys := NewSystem[int]()
	rec := &recorder{}
	runSystem(t, sys, rec.observe)
	if len(rec.events) != 0 {
		t.Errorf("没有 actor 时不应有事件: %v", rec.events)
	}
}

func TestSystem_MountNil(t *testing.T) {
	sys := NewSystem[int]()
	if err := sys.Mount("A", nil); !errors.Is(err, ErrActorIsNil) {
		t.Errorf("期望 ErrActorIsNil，实际为 %v", err)
	}
	if err := sys.MountFunc("A", nil); !errors.Is(err, ErrActorIsNil) {
		t.Errorf("期望 ErrActorIsNil，实际为 %v", err)
	}
	if len(sys.Addresses()) != 0 {
		t.Errorf("挂载失败不应注册地址: %v", sys.Addresses())
	}
}

func TestSystem_MountPoolOverload(t *testing.T) {
	pool, err := grs.New(1)
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer pool.Release()

	sys := NewSystem[int](WithPool[int](pool))
	if err := sys.MountFunc("A", func(*Sender[int], *Receiver[int]) {}); err != nil {
		t.Fatalf("第一个 actor 应挂载成功: %v", err)
	}
	if err := sys.MountFunc("B", func(*Sender[int], *Receiver[int]) {}); err == nil {
		t.Fatal("池满时 Mount 应失败")
	}
	if got := sys.Addresses(); len(got) != 1 || got[0] != "A" {
		t.Errorf("期望只注册 A，实际为 %v", got)
	}
	// 多路复用协程会回退到独立协程
	runSystem(t, sys, nil)
	if stats := sys.Stats(); stats.Started != 1 || stats.Stopped != 1 {
		t.Errorf("统计不符合预期: %+v", stats)
	}
}

func TestSystem_ActorPanic(t *testing.T) {
	sys := NewSystem[int]()
	_ = sys.MountFunc("P", func(*Sender[int], *Receiver[int]) { panic("boom") })

	rec := &recorder{}
	runSystem(t, sys, rec.observe)

	if len(rec.events) != 3 {
		t.Fatalf("期望 Started、Error、Stopped，实际为 %v", rec.events)
	}
	e := rec.events[1]
	if e.Kind != EventError || e.Address != "P" || e.Reason != "panic: boom" || !errors.Is(e.Err, ErrActorPanic) {
		t.Errorf("panic 错误事件不符合预期: %v", e)
	}
	if rec.events[2].Kind != EventStopped {
		t.Errorf("最后一个事件应为 Stopped: %v", rec.events[2])
	}
}

func TestSystem_SenderClosedAfterStop(t *testing.T) {
	sys := NewSystem[int]()
	leaked := make(chan *Sender[int], 1)
	_ = sys.MountFunc("A", func(sender *Sender[int], _ *Receiver[int]) {
		leaked <- sender
	})
	runSystem(t, sys, nil)

	sender := <-leaked
	if sender.Address() != "A" {
		t.Errorf("期望地址 A，实际为 %s", sender.Address())
	}
	if err := sender.Send("A", 1); !errors.Is(err, ErrSenderClosed) {
		t.Errorf("actor 结束后 Send 应返回 ErrSenderClosed，实际为 %v", err)
	}
}

func TestSystem_PublishWithMsgPackCloner(t *testing.T) {
	sys := NewSystem[[]int](WithCloner[[]int](serializer.Clone[[]int]))
	original := []int{1, 2, 3}
	got := make([][][]int, 2)
	for i := range got {
		_ = sys.Mount("H", recvN(1, &got[i]))
	}
	_ = sys.MountFunc("G", func(sender *Sender[[]int], _ *Receiver[[]int]) {
		_ = sender.Publish("H", original)
	})
	runSystem(t, sys, nil)

	a, b := got[0][0], got[1][0]
	if &a[0] == &b[0] || &a[0] == &original[0] {
		t.Error("每个接收者应拿到独立副本")
	}
	if a[2] != 3 || b[2] != 3 {
		t.Errorf("副本内容不符合预期: %v %v", a, b)
	}
}

type buffer struct {
	data []byte
}

func (b buffer) Clone() buffer {
	return buffer{data: append([]byte(nil), b.data...)}
}

func TestSystem_PublishUsesCloneMethod(t *testing.T) {
	sys := NewSystem[buffer]()
	original := buffer{data: []byte("abc")}
	got := make([][]buffer, 2)
	for i := range got {
		_ = sys.Mount("H", recvN(1, &got[i]))
	}
	_ = sys.MountFunc("G", func(sender *Sender[buffer], _ *Receiver[buffer]) {
		_ = sender.Publish("H", original)
	})
	runSystem(t, sys, nil)

	a, b := got[0][0], got[1][0]
	if &a.data[0] == &b.data[0] || &a.data[0] == &original.data[0] {
		t.Error("实现 Clone 的类型应调用 Clone 生成副本")
	}
	if string(a.data) != "abc" || string(b.data) != "abc" {
		t.Errorf("副本内容不符合预期: %q %q", a.data, b.data)
	}
}

func TestSystem_PublishCloneError(t *testing.T) {
	calls := 0
	cloner := func(v int) (int, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("broken")
		}
		return v, nil
	}
	sys := NewSystem[int](WithCloner[int](cloner))
	gate := make(chan struct{})
	var first, third []int

	_ = sys.Mount("H", recvN(1, &first))
	_ = sys.MountFunc("H", func(_ *Sender[int], receiver *Receiver[int]) {
		select {
		case <-receiver.Chan():
			t.Error("复制失败的 endpoint 不应收到消息")
		case <-gate:
		}
	})
	_ = sys.Mount("H", recvN(1, &third))
	_ = sys.MountFunc("G", func(sender *Sender[int], _ *Receiver[int]) {
		_ = sender.Publish("H", 5)
	})

	rec := &recorder{hook: func(e SystemEvent) {
		if e.Kind == EventError {
			close(gate)
		}
	}}
	runSystem(t, sys, rec.observe)

	errs := rec.filter(EventError)
	if len(errs) != 1 || errs[0].Reason != "clone error" {
		t.Errorf("期望 1 个 clone error，实际为 %v", errs)
	}
	if len(first) != 1 || len(third) != 1 {
		t.Errorf("其余 endpoint 应收到消息: %v %v", first, third)
	}
}

// Package actor 进程内 actor 托管与按地址路由
//
// 每个 actor 运行在独立协程中，拥有容量为 1 的邮箱。actor 之间不直接持有对方，
// 所有消息都以 Envelope 的形式经控制通道交给 System，由 System 按地址转发。
// 同一地址可以挂载多个 actor：Send 在它们之间轮询，Publish 发给全部。
package actor

import (
	"sync/atomic"

	"github.com/dzm2020/crimson/pkg/glog"
	"github.com/dzm2020/crimson/pkg/lib/mux"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const (
	idle int32 = iota
	running
	drained
)

// Stats 计数。Mounted 由 Mount 累加，其余只由路由协程修改，Run 返回后读取
type Stats struct {
	Mounted   int
	Started   uint64
	Stopped   uint64
	Forwarded uint64
	Delivered uint64
	Errors    uint64
}

// System actor 宿主与路由
// 注册表与轮询状态只在 Run 的调用协程中访问，不需要加锁
type System[T any] struct {
	opts      *Options[T]
	receivers []<-chan Envelope[T]
	endpoints map[string][]*endpoint[T]
	state     atomic.Int32
	stats     Stats
}

// NewSystem 创建 System
func NewSystem[T any](options ...Option[T]) *System[T] {
	return &System[T]{
		opts:      loadOptions(options...),
		endpoints: make(map[string][]*endpoint[T]),
	}
}

// Mount 在 address 下挂载并启动 actor
// actor 立即开始运行，第一次 Send/Publish 会阻塞到 Run 开始
func (s *System[T]) Mount(address string, actor Actor[T]) error {
	if actor == nil {
		return ErrActorIsNil
	}
	if s.state.Load() != idle {
		return ErrSystemStarted
	}
	ep, control, err := spawnActor(s.opts.Pool, address, actor)
	if err != nil {
		return errors.Wrapf(err, "actor: mount %q", address)
	}
	s.receivers = append(s.receivers, control)
	s.endpoints[address] = append(s.endpoints[address], ep)
	s.stats.Mounted++
	glog.Debug("actor: mounted", zap.String("address", address), zap.Int("endpoints", len(s.endpoints[address])))
	return nil
}

// MountFunc 以函数形式挂载
func (s *System[T]) MountFunc(address string, f func(sender *Sender[T], receiver *Receiver[T])) error {
	if f == nil {
		return ErrActorIsNil
	}
	return s.Mount(address, ActorFunc[T](f))
}

// Addresses 已注册的地址，按字典序
func (s *System[T]) Addresses() []string {
	addresses := maputil.Keys(s.endpoints)
	slices.Sort(addresses)
	return addresses
}

// Stats 返回当前计数
func (s *System[T]) Stats() Stats {
	return s.stats
}

// Run 合并所有 actor 的控制通道并处理事件，直到所有 actor 结束
// 只能调用一次；之后 Mount 返回 ErrSystemStarted
func (s *System[T]) Run(observer Observer) error {
	if !s.state.CompareAndSwap(idle, running) {
		return ErrSystemStarted
	}
	if observer == nil {
		observer = func(SystemEvent) {}
	}

	stream, err := mux.SelectOn(s.opts.Pool.Go, s.receivers...)
	if err != nil {
		// actor 已经在运行，不能失败返回，改用独立协程
		glog.Warn("actor: pool refused multiplexer, fallback to goroutine", zap.Error(err))
		stream = mux.Select(s.receivers...)
	}
	s.receivers = nil

	totals := make(map[string]int, len(s.endpoints))
	for address, eps := range s.endpoints {
		totals[address] = len(eps)
	}
	rr := newRoundRobin(totals)

	glog.Info("actor: system running", zap.Strings("addresses", s.Addresses()), zap.Int("actors", s.stats.Mounted))
	for envelope := range stream {
		s.dispatch(rr, envelope, observer)
	}

	for _, eps := range s.endpoints {
		for _, ep := range eps {
			ep.close()
		}
	}
	s.state.Store(drained)
	glog.Info("actor: system drained",
		zap.Uint64("forwarded", s.stats.Forwarded),
		zap.Uint64("delivered", s.stats.Delivered),
		zap.Uint64("errors", s.stats.Errors))
	return nil
}

func (s *System[T]) dispatch(rr *roundRobin, envelope Envelope[T], observer Observer) {
	switch envelope.Kind {
	case EnvelopeStarted:
		s.stats.Started++
		s.emit(observer, startedEvent(envelope.From))
	case EnvelopeStopped:
		if envelope.Err != nil {
			s.emit(observer, errorEvent(envelope.From, envelope.Err))
		}
		s.stats.Stopped++
		s.emit(observer, stoppedEvent(envelope.From))
	case EnvelopeSend:
		s.send(rr, envelope, observer)
	case EnvelopePublish:
		s.publish(envelope, observer)
	}
}

// send 投递给 To 下轮询选中的一个 endpoint
func (s *System[T]) send(rr *roundRobin, envelope Envelope[T], observer Observer) {
	index := rr.next(envelope.To)
	s.emit(observer, forwardEvent(envelope.From, envelope.To, index))
	eps := s.endpoints[envelope.To]
	if len(eps) == 0 {
		s.emit(observer, errorEvent(envelope.To, ErrAddressNotFound))
		return
	}
	s.deliver(eps[index], envelope.Payload, observer)
}

// publish 为 To 下每个 endpoint 投递一份副本，单个失败不影响其余
func (s *System[T]) publish(envelope Envelope[T], observer Observer) {
	eps := s.endpoints[envelope.To]
	if len(eps) == 0 {
		s.emit(observer, forwardEvent(envelope.From, envelope.To, 0))
		s.emit(observer, errorEvent(envelope.To, ErrAddressNotFound))
		return
	}
	for i, ep := range eps {
		s.emit(observer, forwardEvent(envelope.From, envelope.To, i))
		value, err := s.opts.Cloner(envelope.Payload)
		if err != nil {
			glog.Warn("actor: clone payload failed", zap.String("to", envelope.To), zap.Int("index", i), zap.Error(err))
			s.emit(observer, errorEvent(envelope.To, ErrCloneFailed))
			continue
		}
		s.deliver(ep, value, observer)
	}
}

func (s *System[T]) deliver(ep *endpoint[T], value T, observer Observer) {
	if err := ep.deliver(value); err != nil {
		glog.Debug("actor: deliver failed", zap.String("to", ep.address), zap.Error(err))
		s.emit(observer, errorEvent(ep.address, err))
		return
	}
	s.stats.Delivered++
}

func (s *System[T]) emit(observer Observer, event SystemEvent) {
	switch event.Kind {
	case EventForward:
		s.stats.Forwarded++
	case EventError:
		s.stats.Errors++
	}
	observer(event)
}

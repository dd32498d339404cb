// Package grs 基于 ants 的协程池，负责托管 actor 与多路复用协程
package grs

import (
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default 返回进程级默认池（不限容量）
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool, _ = New(0)
	})
	return defaultPool
}

// Pool 协程池
type Pool struct {
	pool         *ants.Pool
	group        sync.WaitGroup
	goCount      atomic.Int64
	panicCount   atomic.Uint64
	panicHandler func(interface{})
}

// New 创建协程池
// size <= 0 表示不限容量；限定容量时使用非阻塞提交，池满返回 ants.ErrPoolOverload
func New(size int) (*Pool, error) {
	var opts []ants.Option
	if size > 0 {
		opts = append(opts, ants.WithNonblocking(true))
	}
	pool, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "grs: create pool size:%d", size)
	}
	return &Pool{pool: pool}, nil
}

// SetPanicHandler 设置全局 panic 回调，在 GoTry 自带的回调之后执行
func (p *Pool) SetPanicHandler(handler func(interface{})) {
	p.panicHandler = handler
}

// Go 提交任务
func (p *Pool) Go(f func()) error {
	return p.GoTry(f, nil)
}

// GoTry 提交任务，panic 时调用 try
func (p *Pool) GoTry(f func(), try func(interface{})) error {
	p.group.Add(1) // 启动前Add，避免竞态
	err := p.pool.Submit(func() {
		p.goCount.Add(1)
		defer func() {
			p.goCount.Add(-1)
			p.group.Done()
		}()
		Try(f, func(r interface{}) {
			p.panicCount.Add(1)
			if try != nil {
				try(r)
			}
			if p.panicHandler != nil {
				p.panicHandler(r)
			}
		})
	})
	if err != nil {
		p.group.Done()
		return errors.Wrap(err, "grs: submit task")
	}
	return nil
}

// Try 执行 f，捕获 panic 交给 reFun
func Try(f func(), reFun func(r interface{})) {
	defer func() {
		if r := recover(); r != nil {
			if reFun != nil {
				reFun(r)
			}
		}
	}()
	f()
}

// Running 正在执行的任务数
func (p *Pool) Running() int64 {
	return p.goCount.Load()
}

// PanicCount 累计捕获的 panic 次数
func (p *Pool) PanicCount() uint64 {
	return p.panicCount.Load()
}

// Wait 等待所有已提交任务结束
func (p *Pool) Wait() {
	p.group.Wait()
}

// Release 释放池，已提交的任务继续执行到结束
func (p *Pool) Release() {
	p.pool.Release()
}

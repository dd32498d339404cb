package actor

import (
	"github.com/dzm2020/crimson/pkg/lib/grs"
)

type Option[T any] func(*Options[T])

type Options[T any] struct {
	// Pool 托管 actor 与多路复用协程，默认 grs.Default()
	Pool *grs.Pool
	// Cloner Publish 时为每个 endpoint 生成独立副本
	Cloner Cloner[T]
}

func loadOptions[T any](options ...Option[T]) *Options[T] {
	opts := &Options[T]{}
	for _, option := range options {
		option(opts)
	}
	if opts.Pool == nil {
		opts.Pool = grs.Default()
	}
	if opts.Cloner == nil {
		opts.Cloner = defaultClone[T]
	}
	return opts
}

func WithPool[T any](pool *grs.Pool) Option[T] {
	return func(op *Options[T]) {
		op.Pool = pool
	}
}

func WithCloner[T any](cloner Cloner[T]) Option[T] {
	return func(op *Options[T]) {
		op.Cloner = cloner
	}
}

// Package mux 把多个同类型 channel 合并为一个
package mux

import (
	"reflect"

	"golang.org/x/exp/slices"
)

// Spawner 决定协调协程在哪里运行
type Spawner func(f func()) error

func goSpawner(f func()) error {
	go f()
	return nil
}

// Select 合并 inputs，所有输入关闭后输出关闭
func Select[T any](inputs ...<-chan T) <-chan T {
	out, _ := SelectOn(goSpawner, inputs...)
	return out
}

// SelectOn 同 Select，协调协程由 spawn 启动
// 单个输入内的顺序保持不变；不同输入之间的顺序由运行时 select 决定
func SelectOn[T any](spawn Spawner, inputs ...<-chan T) (<-chan T, error) {
	cases := make([]reflect.SelectCase, 0, len(inputs))
	for _, in := range inputs {
		if in == nil {
			continue
		}
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(in)})
	}
	out := make(chan T, 1)
	if err := spawn(func() { merge[T](cases, out) }); err != nil {
		return nil, err
	}
	return out, nil
}

func merge[T any](cases []reflect.SelectCase, out chan<- T) {
	defer close(out)
	for len(cases) > 0 {
		chosen, value, ok := reflect.Select(cases)
		if !ok {
			// 输入已关闭，移出存活集合
			cases = slices.Delete(cases, chosen, chosen+1)
			continue
		}
		v, _ := value.Interface().(T)
		out <- v
	}
}

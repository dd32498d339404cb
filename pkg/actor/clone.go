package actor

// Cloner 为 Publish 的每个接收者生成一份副本
type Cloner[T any] func(value T) (T, error)

// defaultClone 实现了 Clone() T 的类型调用 Clone，其余按值复制
func defaultClone[T any](value T) (T, error) {
	if c, ok := any(value).(interface{ Clone() T }); ok {
		return c.Clone(), nil
	}
	return value, nil
}

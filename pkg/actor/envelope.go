package actor

// EnvelopeKind 控制通道上的事件类型
type EnvelopeKind uint8

const (
	EnvelopeStarted EnvelopeKind = iota
	EnvelopeSend
	EnvelopePublish
	EnvelopeStopped
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeStarted:
		return "started"
	case EnvelopeSend:
		return "send"
	case EnvelopePublish:
		return "publish"
	case EnvelopeStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Envelope actor 发往 system 的消息，只会被路由消费一次
// Started/Stopped 的地址放在 From 中
type Envelope[T any] struct {
	Kind    EnvelopeKind
	From    string
	To      string
	Payload T
	// Err 仅 Stopped 使用，actor 逻辑 panic 时非空
	Err error
}

package serializer

var (
	MsgPack = new(msgPackCodec)
)

// Codec 编解码器
type Codec interface {
	Marshal(msg interface{}) ([]byte, error)
	Unmarshal(data []byte, msg interface{}) error
}

package serializer

// Clone 通过 msgpack 编解码得到 v 的深拷贝
// 只复制可导出字段，channel、func 等无法编码的值会返回错误
func Clone[T any](v T) (T, error) {
	var out T
	data, err := MsgPack.Marshal(v)
	if err != nil {
		return out, err
	}
	if err = MsgPack.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

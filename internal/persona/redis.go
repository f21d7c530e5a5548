package persona

// 定义与匿名身份相关的Redis键名
const (
	// InfoKey 是一个Redis Hash，存储所有会话的身份展示数据
	// Field: 会话UUID
	// Value: Info 结构体的JSON序列化字符串
	InfoKey = "persona:info"
)

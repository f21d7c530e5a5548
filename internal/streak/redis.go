package streak

// 定义与连签相关的Redis键名
const (
	// RankingKey 是一个Redis Sorted Set，按当前连签天数实时排序会话。
	// Score: CurrentStreak
	// Member: 会话UUID
	// 同分时ZREVRANGE按成员字典序倒序返回，SQLite回退路径使用相同的次序。
	RankingKey = "streak:ranking"
)

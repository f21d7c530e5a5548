package content

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// PostCompensator 封装了一次发帖计数增加操作的回滚逻辑。
// 它被设计为在业务流程失败时，通过defer语句安全地执行补偿。
type PostCompensator struct {
	sessionID string
	member    string
	committed bool
}

const (
	// postLimitKeyPrefix 是Redis中有序集合的键名前缀
	postLimitKeyPrefix = "post_limit:"
	// postLimitWindow 定义了发帖计数的时间窗口
	postLimitWindow = 24 * time.Hour
	// postLimitTTL 是每个会话记录在Redis中的生存时间，比窗口稍长以作缓冲
	postLimitTTL = 25 * time.Hour
)

var (
	limiterMutex sync.RWMutex // 借用读写锁的概念，IncrementPostCount可以并发执行
)

// deleteKeysByPrefix 是一个辅助函数，用于安全地删除key
func deleteKeysByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	var cursor uint64
	matchPattern := prefix + "*"
	const batchSize = 500 // 每次SCAN和DEL的数量

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, matchPattern, batchSize).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// generateUniqueID 根据给定的时间生成一个16字节的、抗冲突的ID，并将其编码为Base64字符串。
// 结构: [ 8字节纳秒时间戳 (Big Endian) | 8字节随机数 ]
func generateUniqueID(t time.Time) (string, error) {
	b := make([]byte, 16)

	timestamp := uint64(t.UnixNano())
	binary.BigEndian.PutUint64(b[0:8], timestamp)

	_, err := rand.Read(b[8:16])
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RebuildPostLimitCache 从SQLite重建过去postLimitWindow内的发帖频率缓存。
// 这个方法也用于应用启动时的初始化。
func RebuildPostLimitCache() error {
	fmt.Println("正在从SQLite重建发帖频率缓存...")

	limiterMutex.Lock()
	defer limiterMutex.Unlock()

	type recentPost struct {
		SessionID string
		CreatedAt time.Time
	}

	// 1. 从四张内容表中收集postLimitWindow内的发帖记录
	beginTime := time.Now().Add(-postLimitWindow)
	var recentPosts []recentPost
	for _, model := range []interface{}{&Confession{}, &Crush{}, &Spotted{}, &Poll{}} {
		var rows []recentPost
		err := database.DB.Model(model).Where("created_at > ?", beginTime).
			Select("session_id", "created_at").Find(&rows).Error
		if err != nil {
			return fmt.Errorf("无法从SQLite读取近期发帖记录: %w", err)
		}
		recentPosts = append(recentPosts, rows...)
	}

	if len(recentPosts) == 0 {
		fmt.Println("发帖频率限制：无近期发帖数据需要恢复。")
		return nil
	}

	// 我们将相同会话的记录分组，以减少Pipeline的调用次数
	postMap := make(map[string][]redis.Z)
	for _, post := range recentPosts {
		if post.SessionID == "" {
			continue
		}
		key := postLimitKeyPrefix + post.SessionID
		timestamp := float64(post.CreatedAt.UnixMicro())
		memberID, err := generateUniqueID(post.CreatedAt)
		if err != nil {
			fmt.Printf("生成 memberID 失败: %v\n", err)
			continue
		}
		postMap[key] = append(postMap[key], redis.Z{Score: timestamp, Member: memberID})
	}

	// 2. 安全地删除所有旧的会话记录
	if err := deleteKeysByPrefix(database.Ctx, database.RDB, postLimitKeyPrefix); err != nil {
		return fmt.Errorf("删除旧的发帖频率键失败: %w", err)
	}

	// 3. 批量将记录写回Redis
	pipe := database.RDB.Pipeline()
	for key, members := range postMap {
		pipe.ZAdd(database.Ctx, key, members...)
		pipe.Expire(database.Ctx, key, postLimitTTL)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("批量写回发帖频率数据到Redis失败: %w", err)
	}

	fmt.Printf("发帖频率限制：成功从SQLite恢复了 %d 个会话的发帖数据到缓存。\n", len(postMap))
	return nil
}

// IncrementPostCount 在Redis中为一个会话原子地记录一次新的发帖，并返回其在过去postLimitWindow内的总发帖数。
// 返回最新的计数值和一个补偿句柄，用于在业务流程失败时回滚此次计数增加。当返回error时，补偿句柄为nil。
func IncrementPostCount(sessionID string, postTime time.Time) (int64, *PostCompensator, error) {
	if sessionID == "" {
		return 0, nil, errors.New("发帖缺少会话标识")
	}

	key := postLimitKeyPrefix + sessionID
	// 1. 计算postLimitWindow前的时间戳，作为清理的边界
	minTimestamp := float64(postTime.Add(-postLimitWindow).UnixMicro())

	// 2. 生成本次发帖的Score和Member
	scoreTime := float64(postTime.UnixMicro())
	memberID, err := generateUniqueID(postTime)
	if err != nil {
		return 0, nil, fmt.Errorf("生成 memberID 失败: %w", err)
	}

	// 不使用defer自动管理，成功路径上limiterMutex的读锁范围会拓展到SQLite操作结束后
	limiterMutex.RLock()

	if !database.IsRedisHealthy() {
		limiterMutex.RUnlock()
		return 0, nil, errors.New("服务暂时不可用，无法获取发帖频率")
	}

	// 3. 使用Redis事务(TxPipeline)来保证所有操作的原子性
	pipe := database.RDB.TxPipeline()
	// a. 移除所有旧记录
	pipe.ZRemRangeByScore(database.Ctx, key, "-inf", fmt.Sprintf("(%f", minTimestamp))
	// b. 添加新记录
	pipe.ZAdd(database.Ctx, key, redis.Z{Score: scoreTime, Member: memberID})
	// c. 刷新过期时间
	pipe.Expire(database.Ctx, key, postLimitTTL)
	// d. 获取更新后的总数
	countCmd := pipe.ZCard(database.Ctx, key)

	// 4. 执行事务
	_, err = pipe.Exec(database.Ctx)
	if err != nil {
		limiterMutex.RUnlock()
		return 0, nil, fmt.Errorf("执行发帖计数事务失败: %w", err)
	}

	// 5. 返回最新的计数值
	count, err := countCmd.Result()
	if err != nil {
		database.RDB.ZRem(database.Ctx, key, memberID)
		limiterMutex.RUnlock()
		return 0, nil, fmt.Errorf("获取发帖计数结果失败: %w", err)
	}

	return count, &PostCompensator{sessionID: sessionID, member: memberID}, nil
}

// Commit 标记上层业务事务已成功，阻止后续的回滚操作。
// 这个方法应该在整个业务流程（例如，SQLite写入等）都成功后调用。
func (c *PostCompensator) Commit() {
	c.committed = true
}

// RollbackUnlessCommitted 是一个用于defer调用的关键方法。
// 如果Commit()没有被调用，它会自动执行对Redis的补偿操作（删除之前添加的成员）。
func (c *PostCompensator) RollbackUnlessCommitted() {
	defer limiterMutex.RUnlock()

	if c.committed {
		return
	}

	if !database.IsRedisHealthy() {
		// 只记录错误，此时主流程已经失败了
		fmt.Printf("严重警告: 发帖计数补偿操作时Redis不健康。 会话: %s, Member: %s\n", c.sessionID, c.member)
	}

	// 执行补偿：从有序集合中移除本次发帖对应的成员
	key := postLimitKeyPrefix + c.sessionID

	err := database.RDB.ZRem(database.Ctx, key, c.member).Err()
	if err != nil {
		fmt.Printf("严重警告: 发帖计数补偿操作失败! 会话: %s, Member: %s, 错误: %v\n", c.sessionID, c.member, err)
	}
}

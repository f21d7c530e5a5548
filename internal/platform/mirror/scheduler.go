package mirror

import (
	"fmt"
	"strconv"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/metadata"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

const refreshInterval = 10 * time.Minute // 定时镜像维护频率

// StartMirrorScheduler 启动一个后台Goroutine来定期维护Redis镜像：
// 把积分处理器推进的水位线持久化到SQLite的metadata表，
// 并重建身份与连签的热镜像，修复可能的漂移。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartMirrorScheduler(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("镜像维护调度器已启动。")

	for {
		// 使用可中断的休眠来代替ticker。
		// 这使得整个循环可以在收到停机信号时立刻从休眠中唤醒并退出。
		if err := handle.Sleep(refreshInterval); err != nil {
			fmt.Printf("镜像维护调度器: 休眠被中断，正在关闭... (%v)\n", err)
			return
		}

		if !database.IsRedisHealthy() {
			fmt.Println("镜像维护调度器: 检测到Redis不可用，跳过本次维护。")
			continue
		}

		if err := PersistWatermark(); err != nil {
			fmt.Printf("镜像维护调度器错误: 持久化水位线失败: %v\n", err)
		}

		if err := persona.WarmupCache(); err != nil {
			fmt.Printf("镜像维护调度器错误: 重建身份镜像失败: %v\n", err)
		}
		if err := streak.WarmupCache(); err != nil {
			fmt.Printf("镜像维护调度器错误: 重建连签排行失败: %v\n", err)
		}
	}
}

// PersistWatermark 把Redis中的镜像水位线写回SQLite，
// 让重启后的积分处理器可以从最近的位置继续。
// 停机流程的最终步骤也会调用它。
func PersistWatermark() error {
	value, err := database.RDB.Get(database.Ctx, metadata.RedisLastMirroredEventIDKey).Result()
	if err == redis.Nil {
		return nil // 尚未处理任何积分事件
	}
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fmt.Errorf("解析水位线失败: %w", err)
	}

	return metadata.SetLastMirroredEventID(database.DB, uint(id))
}

// Package testutil 提供测试用的数据库与Redis替身。
// 每个测试拿到独立的内存SQLite和miniredis实例，
// 并在结束时恢复全局健康状态。
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDB 用独立的内存SQLite替换全局数据库实例，并迁移给定的表。
func SetupDB(t *testing.T, models ...interface{}) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开内存SQLite失败: %v", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("迁移测试表失败: %v", err)
		}
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
	})
}

// SetupRedis 用miniredis替换全局Redis客户端，并把健康状态标记为可用。
func SetupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	prev := database.RDB
	database.RDB = client
	database.UpdateStatus(true, "test-run-id")
	t.Cleanup(func() {
		_ = client.Close()
		database.RDB = prev
		database.UpdateStatus(true, "test-run-id")
	})
	return mr
}

// MarkRedisUnhealthy 把健康状态标记为不可用，用于测试SQLite降级路径。
func MarkRedisUnhealthy(t *testing.T) {
	t.Helper()
	database.UpdateStatus(false, "")
	t.Cleanup(func() {
		database.UpdateStatus(true, "test-run-id")
	})
}

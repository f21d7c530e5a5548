package database

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的GORM实例，SQLite是整个互动子系统的持久化事实来源
var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(cfg config.SqliteConfig) {
	var err error

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	DB, err = gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})

	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}

// IsDuplicateKeyError 判断一个GORM错误是否由唯一约束冲突引起。
// 唯一约束是bookmark/admirer等toggle类操作在并发下的正确性兜底。
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsRetryableError 判断一个SQLite错误是否值得短暂重试（例如数据库被锁定）。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

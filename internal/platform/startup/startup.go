package startup

import (
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/admirer"
	"github.com/CampusWhisper/campus-whisper-backend/internal/bookmark"
	"github.com/CampusWhisper/campus-whisper-backend/internal/content"
	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/metadata"
	"github.com/CampusWhisper/campus-whisper-backend/internal/report"
	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeCachedDB(); err != nil {
		return err
	}
	if err := session.PrimeCachedDB(); err != nil {
		return err
	}
	if err := persona.PrimeCachedDB(); err != nil {
		return err
	}
	if err := streak.PrimeCachedDB(); err != nil {
		return err
	}
	if err := leaderboard.PrimeCachedDB(); err != nil {
		return err
	}
	if err := bookmark.PrimeCachedDB(); err != nil {
		return err
	}
	if err := admirer.PrimeCachedDB(); err != nil {
		return err
	}
	if err := content.PrimeCachedDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// Redis重启后所有热镜像都已丢失，必须从SQLite整体重建。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := metadata.WarmupCache(); err != nil {
		return err
	}
	if err := session.WarmupCache(); err != nil {
		return err
	}
	if err := persona.WarmupCache(); err != nil {
		return err
	}
	if err := streak.WarmupCache(); err != nil {
		return err
	}
	if err := leaderboard.WarmupCache(); err != nil {
		return err
	}
	if err := content.WarmupCache(); err != nil {
		return err
	}
	if err := report.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}

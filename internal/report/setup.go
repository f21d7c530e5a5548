package report

import "fmt"

// WarmupCache 在启动或缓存重建时清空报告缓存，
// 避免旧报告与重建后的排行镜像不一致。
func WarmupCache() error {
	if err := ClearReportCache(); err != nil {
		return fmt.Errorf("清空报告缓存失败: %w", err)
	}
	fmt.Println("报告缓存已清空。")
	return nil
}

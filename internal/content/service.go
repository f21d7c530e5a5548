package content

import (
	"errors"
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
	"gorm.io/gorm"
)

// 发帖与反应的计分常量
const (
	postPoints     float64 = 10 // 每次发帖为top_poster加的分
	reactionPoints float64 = 5  // 每个反应为作者的funniest/most_helpful加的分

	// 连续发帖每满streakMilestone天，为streak_master加一次里程碑分
	streakMilestone         = 5
	milestonePoints float64 = 25
)

var ErrContentNotFound = errors.New("内容不存在")

// Lookup 把 (kind, id) 的带标签引用解析为具体的内容行。
// 收藏列表靠它把每条收藏还原成恰好一种内容。
func Lookup(kind Kind, id uint) (*Ref, error) {
	ref := &Ref{Kind: kind, ID: id}
	var err error
	switch kind {
	case KindConfession:
		var row Confession
		err = database.DB.First(&row, id).Error
		ref.Confession = &row
	case KindCrush:
		var row Crush
		err = database.DB.First(&row, id).Error
		ref.Crush = &row
	case KindSpotted:
		var row Spotted
		err = database.DB.First(&row, id).Error
		ref.Spotted = &row
	case KindPoll:
		var row Poll
		err = database.DB.First(&row, id).Error
		ref.Poll = &row
	default:
		return nil, fmt.Errorf("未知的内容种类: %s", kind)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return ref, nil
}

// recordEngagement 在内容行落库之后驱动计分管线：
// 记录连续发帖状态，为top_poster加分，并在连续天数
// 到达里程碑时追加streak_master奖励。
// 计分失败只打印日志，不回滚已创建的内容。
func recordEngagement(sessionID string) {
	result, err := streak.RecordPost(sessionID)
	if err != nil {
		fmt.Printf("记录会话 %s 的连续发帖状态失败: %v\n", sessionID, err)
	}

	if err := leaderboard.AwardScore(sessionID, leaderboard.CategoryTopPoster, postPoints); err != nil {
		fmt.Printf("为会话 %s 的发帖计分失败: %v\n", sessionID, err)
	}

	if result != nil && result.Outcome == streak.OutcomeContinued &&
		result.Streak.CurrentStreak%streakMilestone == 0 {
		if err := leaderboard.AwardScore(sessionID, leaderboard.CategoryStreakMaster, milestonePoints); err != nil {
			fmt.Printf("为会话 %s 的连续发帖里程碑计分失败: %v\n", sessionID, err)
		}
	}
}

// CreateConfession 创建一条表白帖并驱动计分管线
func CreateConfession(sessionID, body string) (*Confession, error) {
	row := &Confession{SessionID: sessionID, Body: body}
	if err := database.DB.Create(row).Error; err != nil {
		return nil, err
	}
	recordEngagement(sessionID)
	registerFeaturedCandidate(row)
	return row, nil
}

// CreateCrush 创建一条心动帖并驱动计分管线
func CreateCrush(sessionID, body string) (*Crush, error) {
	row := &Crush{SessionID: sessionID, Body: body}
	if err := database.DB.Create(row).Error; err != nil {
		return nil, err
	}
	recordEngagement(sessionID)
	return row, nil
}

// CreateSpotted 创建一条偶遇帖并驱动计分管线
func CreateSpotted(sessionID, location, body string) (*Spotted, error) {
	row := &Spotted{SessionID: sessionID, Location: location, Body: body}
	if err := database.DB.Create(row).Error; err != nil {
		return nil, err
	}
	recordEngagement(sessionID)
	return row, nil
}

// CreatePoll 创建一条投票帖并驱动计分管线
func CreatePoll(sessionID, question, options string) (*Poll, error) {
	row := &Poll{SessionID: sessionID, Question: question, Options: options}
	if err := database.DB.Create(row).Error; err != nil {
		return nil, err
	}
	recordEngagement(sessionID)
	return row, nil
}

// Reaction 是表白帖支持的两种反应
type Reaction string

const (
	ReactionFunny   Reaction = "funny"
	ReactionHelpful Reaction = "helpful"
)

// ParseReaction 校验并解析反应字符串
func ParseReaction(s string) (Reaction, bool) {
	switch Reaction(s) {
	case ReactionFunny, ReactionHelpful:
		return Reaction(s), true
	}
	return "", false
}

// ReactToConfession 给表白帖添加反应，同时为帖子作者的
// 对应分类加分。计数更新和作者查询在同一个事务里完成。
func ReactToConfession(id uint, reaction Reaction) (*Confession, error) {
	var row Confession
	var column string
	var category leaderboard.Category
	switch reaction {
	case ReactionFunny:
		column = "funny_count"
		category = leaderboard.CategoryFunniest
	case ReactionHelpful:
		column = "helpful_count"
		category = leaderboard.CategoryMostHelpful
	default:
		return nil, fmt.Errorf("未知的反应类型: %s", reaction)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContentNotFound
			}
			return err
		}
		return tx.Model(&row).UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	if err := leaderboard.AwardScore(row.SessionID, category, reactionPoints); err != nil {
		fmt.Printf("为会话 %s 的反应计分失败: %v\n", row.SessionID, err)
	}

	// 返回更新后的计数
	if err := database.DB.First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

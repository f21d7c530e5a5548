package content

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/tree"
)

// featuredRepository 是精选轮换的内存仓库。
// 权重树实现"冷门优先"：曝光次数越少的表白帖权重越高，
// 被抽中展示的概率越大。
type featuredRepository struct {
	idToIndex map[uint]int
	indexToID []uint

	weightsTree *tree.SegmentTree
	rwLock      sync.RWMutex
}

var featuredRepo *featuredRepository

var ErrNoFeaturedCandidate = errors.New("没有可精选的内容")

// featureWeight 根据曝光次数计算抽样权重
func featureWeight(featureCount int) float64 {
	return 1.0 / float64(1+featureCount)
}

// InitializeFeaturedRepository 从SQLite加载全部表白帖，重建精选权重树。
// 应用启动和Redis恢复后的缓存重建都会调用它。
func InitializeFeaturedRepository() error {
	var confessions []Confession
	if err := database.DB.Order("id asc").Find(&confessions).Error; err != nil {
		return fmt.Errorf("无法从SQLite加载表白帖: %w", err)
	}

	repo := &featuredRepository{
		idToIndex: make(map[uint]int, len(confessions)),
		indexToID: make([]uint, len(confessions)),
	}

	if len(confessions) > 0 {
		weights := make([]float64, len(confessions))
		for i, c := range confessions {
			repo.idToIndex[c.ID] = i
			repo.indexToID[i] = c.ID
			weights[i] = featureWeight(c.FeatureCount)
		}

		segTree, err := tree.NewSegmentTree(len(confessions))
		if err != nil {
			return fmt.Errorf("无法创建精选权重树: %w", err)
		}
		if err := segTree.Rebuild(weights); err != nil {
			return fmt.Errorf("无法重建精选权重树: %w", err)
		}
		repo.weightsTree = segTree
	}

	featuredRepo = repo

	fmt.Printf("精选仓库初始化成功，加载了 %d 条表白帖。\n", len(confessions))
	return nil
}

// registerFeaturedCandidate 把新创建的表白帖加入精选候选集。
// 线段树容量固定，新增成员时整树重建，发帖频率下可以接受。
func registerFeaturedCandidate(c *Confession) {
	if featuredRepo == nil {
		return
	}

	featuredRepo.rwLock.Lock()
	defer featuredRepo.rwLock.Unlock()

	if _, ok := featuredRepo.idToIndex[c.ID]; ok {
		return
	}

	featuredRepo.idToIndex[c.ID] = len(featuredRepo.indexToID)
	featuredRepo.indexToID = append(featuredRepo.indexToID, c.ID)

	size := len(featuredRepo.indexToID)
	weights := make([]float64, size)
	for i := 0; i < size-1; i++ {
		w, err := featuredRepo.weightsTree.Query(i)
		if err != nil {
			w = featureWeight(0)
		}
		weights[i] = w
	}
	weights[size-1] = featureWeight(c.FeatureCount)

	segTree, err := tree.NewSegmentTree(size)
	if err != nil {
		fmt.Printf("扩建精选权重树失败: %v\n", err)
		return
	}
	if err := segTree.Rebuild(weights); err != nil {
		fmt.Printf("重建精选权重树失败: %v\n", err)
		return
	}
	featuredRepo.weightsTree = segTree
}

// PickFeaturedConfession 按当前权重随机抽取一条精选表白帖，
// 并把它的曝光计数加一（内存权重与SQLite同步更新）。
func PickFeaturedConfession() (*Confession, error) {
	if featuredRepo == nil {
		return nil, ErrNoFeaturedCandidate
	}

	featuredRepo.rwLock.Lock()
	defer featuredRepo.rwLock.Unlock()

	if featuredRepo.weightsTree == nil || len(featuredRepo.indexToID) == 0 {
		return nil, ErrNoFeaturedCandidate
	}

	total := featuredRepo.weightsTree.TotalSum()
	if total <= 0 {
		return nil, ErrNoFeaturedCandidate
	}

	index, err := featuredRepo.weightsTree.Find(rand.Float64() * total)
	if err != nil {
		return nil, fmt.Errorf("精选抽样失败: %w", err)
	}
	id := featuredRepo.indexToID[index]

	var row Confession
	if err := database.DB.First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("精选帖 %d 读取失败: %w", id, err)
	}

	// 曝光计数加一，权重随之衰减。
	// UpdateColumn会把新值写回row.FeatureCount，无需再手动自增。
	if err := database.DB.Model(&row).
		UpdateColumn("feature_count", row.FeatureCount+1).Error; err != nil {
		fmt.Printf("更新精选帖 %d 的曝光计数失败: %v\n", id, err)
	}
	if err := featuredRepo.weightsTree.Update(index, featureWeight(row.FeatureCount)); err != nil {
		fmt.Printf("更新精选帖 %d 的抽样权重失败: %v\n", id, err)
	}

	return &row, nil
}

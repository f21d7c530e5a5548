package leaderboard

import (
	"container/heap"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/metadata"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/lifecycle"
)

// eventMinHeap 实现了 container/heap 接口，按事件ID排序暂存积分事件
type eventMinHeap []ScoreEvent

func (h eventMinHeap) Len() int            { return len(h) }
func (h eventMinHeap) Less(i, j int) bool  { return h[i].ID < h[j].ID }
func (h eventMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventMinHeap) Push(x interface{}) { *h = append(*h, x.(ScoreEvent)) }
func (h *eventMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// scoreProcessor 是一个单一写入者，负责按事件ID顺序把积分事件镜像到Redis。
// 排行榜的三个周期桶共用同一条镜像路径，避免并发写入造成的交错。
type scoreProcessor struct {
	eventChan      chan ScoreEvent
	lastMirroredID uint
	buffer         *eventMinHeap
	processMutex   sync.Mutex
	isShutdown     bool
	shutdownMutex  sync.Mutex
}

// globalScoreProcessor 是私有的、全局的处理器实例
var globalScoreProcessor = scoreProcessor{
	eventChan: make(chan ScoreEvent, 10000),
}

const (
	patrolInterval = 30 * time.Second
	patrolBatch    = 500
)

// initializeProcessor 初始化全局的scoreProcessor实例
func initializeProcessor(startID uint) {
	globalScoreProcessor.lastMirroredID = startID
	h := &eventMinHeap{}
	heap.Init(h)
	globalScoreProcessor.buffer = h
}

// submitScoreEventToQueue 供AwardScore调用，提交新的镜像任务。
// 队列已满或已停机时放弃实时处理，巡查员稍后会从SQLite补齐。
func submitScoreEventToQueue(event ScoreEvent) {
	globalScoreProcessor.shutdownMutex.Lock()
	defer globalScoreProcessor.shutdownMutex.Unlock()
	if globalScoreProcessor.isShutdown {
		return
	}
	select {
	case globalScoreProcessor.eventChan <- event:
	default:
		fmt.Printf("警告: 积分镜像队列已满，暂时放弃实时处理 event ID: %d\n", event.ID)
	}
}

// startProcessor 启动处理器的主循环
func startProcessor(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	fmt.Println("积分处理器 (Score Processor) 已启动。")

	// 启动时先补齐快照之后遗漏的事件
	globalScoreProcessor.requeueMissedEvents()
	globalScoreProcessor.runMainLoop(gracefulHandle, forcefulHandle)
}

// runMainLoop 是处理器的主事件循环，响应两阶段停机
func (sp *scoreProcessor) runMainLoop(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	for {
		select {
		case <-gracefulHandle.Done():
			fmt.Println("Score Processor: 收到优雅停机信号，正在处理剩余任务...")
			sp.drainQueue(forcefulHandle)
			fmt.Println("Score Processor: 优雅停机完成，主循环退出。")
			return
		default:
			sp.processNext(gracefulHandle)
		}
	}
}

// processNext 取出并应用下一个连续的事件；没有连续事件时等待新任务或巡查。
func (sp *scoreProcessor) processNext(handle *lifecycle.Handle) {
	if event, ok := sp.popContinuousEvent(); ok {
		if !database.IsRedisHealthy() {
			// Redis不可用时把事件放回暂存区，与健康检查器同步休眠
			sp.pushBack(event)
			handle.Sleep(5 * time.Second)
			return
		}
		if err := sp.applyEventToMirror(event); err != nil {
			fmt.Printf("错误: 镜像 event ID %d 失败，已放回队列: %v\n", event.ID, err)
			sp.pushBack(event)
			handle.Sleep(time.Second)
		}
		return
	}

	// 暂存区没有连续事件，等待新任务，超时则巡查SQLite
	timer := time.NewTimer(patrolInterval)
	defer timer.Stop()
	select {
	case <-handle.Done():
		return
	case event := <-sp.eventChan:
		sp.pushBack(event)
	case <-timer.C:
		sp.requeueMissedEvents()
	}
}

// popContinuousEvent 从暂存区弹出紧接水位线的事件；顺带丢弃已过期的重复事件。
func (sp *scoreProcessor) popContinuousEvent() (ScoreEvent, bool) {
	sp.processMutex.Lock()
	defer sp.processMutex.Unlock()

	// 先吞掉channel中已经到达的任务，保证暂存区视野完整
	for {
		select {
		case event := <-sp.eventChan:
			heap.Push(sp.buffer, event)
			continue
		default:
		}
		break
	}

	for sp.buffer.Len() > 0 {
		top := (*sp.buffer)[0]
		if top.ID <= sp.lastMirroredID {
			// 巡查与实时提交可能重复入队，镜像过的直接丢弃
			heap.Pop(sp.buffer)
			continue
		}
		if top.ID == sp.lastMirroredID+1 {
			return heap.Pop(sp.buffer).(ScoreEvent), true
		}
		// 存在空洞，交给巡查员补齐
		return ScoreEvent{}, false
	}
	return ScoreEvent{}, false
}

func (sp *scoreProcessor) pushBack(event ScoreEvent) {
	sp.processMutex.Lock()
	defer sp.processMutex.Unlock()
	heap.Push(sp.buffer, event)
}

// applyEventToMirror 在一个Redis事务中把事件应用到三个周期桶，并推进水位线。
// 桶由事件自身的发生时间决定，重放时结果一致。
func (sp *scoreProcessor) applyEventToMirror(event ScoreEvent) error {
	pipe := database.RDB.TxPipeline()
	for _, period := range AllPeriods {
		pipe.ZIncrBy(database.Ctx, MirrorKey(event.Category, period, event.EventTime), event.Delta, event.SessionID)
	}
	pipe.Set(database.Ctx, metadata.RedisLastMirroredEventIDKey, strconv.FormatUint(uint64(event.ID), 10), 0)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return err
	}

	sp.processMutex.Lock()
	sp.lastMirroredID = event.ID
	sp.processMutex.Unlock()
	return nil
}

// requeueMissedEvents 从SQLite把水位线之后的事件重新入队。
// 覆盖两种情况：启动时补齐快照后的事件；运行期channel溢出造成的空洞。
func (sp *scoreProcessor) requeueMissedEvents() {
	sp.processMutex.Lock()
	lastID := sp.lastMirroredID
	sp.processMutex.Unlock()

	events, err := listEventsAfter(lastID, patrolBatch)
	if err != nil {
		fmt.Printf("警告: 巡查积分事件失败: %v\n", err)
		return
	}
	if len(events) == 0 {
		return
	}

	sp.processMutex.Lock()
	for _, event := range events {
		if event.ID > sp.lastMirroredID {
			heap.Push(sp.buffer, event)
		}
	}
	sp.processMutex.Unlock()
}

// drainQueue 在收到优雅停机信号后，尽力处理完暂存区和channel中的剩余任务
func (sp *scoreProcessor) drainQueue(forcefulHandle *lifecycle.Handle) {
	// 关闭channel，不再接收新任务
	sp.shutdownMutex.Lock()
	sp.isShutdown = true
	close(sp.eventChan)
	sp.shutdownMutex.Unlock()

	// 将channel中所有剩余的任务都转移到暂存区
	for event := range sp.eventChan {
		sp.pushBack(event)
	}

	for {
		select {
		case <-forcefulHandle.Done():
			fmt.Println("Score Processor: 收到强制停机信号，排空队列被中断。")
			return
		default:
		}

		event, ok := func() (ScoreEvent, bool) {
			sp.processMutex.Lock()
			defer sp.processMutex.Unlock()
			for sp.buffer.Len() > 0 {
				top := (*sp.buffer)[0]
				if top.ID <= sp.lastMirroredID {
					heap.Pop(sp.buffer)
					continue
				}
				if top.ID == sp.lastMirroredID+1 {
					return heap.Pop(sp.buffer).(ScoreEvent), true
				}
				break
			}
			return ScoreEvent{}, false
		}()
		if !ok {
			// 队列已空或存在空洞，排空结束，剩余事件由下次启动的巡查补齐
			return
		}

		// 在排空模式下简化重试逻辑，失败即放弃
		if err := sp.applyEventToMirror(event); err != nil {
			fmt.Printf("排空队列时镜像 event ID %d 失败，已放弃: %v\n", event.ID, err)
			return
		}
	}
}

// resetProcessorWatermark 在缓存重建后重置水位线并清空暂存区。
// 重建已把SQLite中的最终积分写回镜像，旧的暂存事件不应再被应用。
func resetProcessorWatermark(id uint) {
	globalScoreProcessor.processMutex.Lock()
	defer globalScoreProcessor.processMutex.Unlock()
	globalScoreProcessor.lastMirroredID = id
	if globalScoreProcessor.buffer != nil {
		*globalScoreProcessor.buffer = (*globalScoreProcessor.buffer)[:0]
	}
}

// Package idgen 提供雪花算法 ID 生成器
package idgen

import (
	"sync"
	"time"
)

// 2024-01-01 00:00:00 UTC，毫秒
const epoch int64 = 1704067200000

// Generator 雪花 ID 生成器
type Generator struct {
	mu        sync.Mutex
	timestamp int64
	sequence  int64
	nodeID    int64
}

// NewGenerator 创建雪花 ID 生成器
func NewGenerator(nodeID int64) *Generator {
	return &Generator{
		timestamp: 0,
		sequence:  0,
		nodeID:    nodeID & 0x3FF, // 10 bits
	}
}

// Next 生成雪花 ID
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == g.timestamp {
		g.sequence = (g.sequence + 1) & 0xFFF // 12 bits
		if g.sequence == 0 {
			// 序列号用尽，等待下一毫秒
			for now <= g.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.sequence = 0
	}

	g.timestamp = now

	return (now-epoch)<<22 | g.nodeID<<12 | g.sequence
}

var defaultGenerator = NewGenerator(1)

// Init 设置默认生成器的节点 ID
func Init(nodeID int64) {
	defaultGenerator = NewGenerator(nodeID)
}

// Next 使用默认生成器生成 ID
func Next() int64 {
	return defaultGenerator.Next()
}

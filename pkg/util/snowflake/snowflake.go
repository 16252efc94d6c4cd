// Package snowflake 生成消息对外 ID
package snowflake

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// maxMachineID 10 位节点号
const maxMachineID = 1023

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// Init 初始化雪花节点，只有第一次调用生效
// 多实例部署时 machineID 必须互不相同，否则消息 ID 可能冲突
func Init(machineID int64) error {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > maxMachineID {
			nodeErr = fmt.Errorf("snowflake machineId %d out of range [0, %d]", machineID, maxMachineID)
			return
		}
		node, nodeErr = snowflake.NewNode(machineID)
		if nodeErr == nil {
			zap.L().Info("snowflake node ready", zap.Int64("machine_id", machineID))
		}
	})
	return nodeErr
}

// GenerateID 生成消息 ID，未初始化时 (测试) 使用节点 1
func GenerateID() int64 {
	_ = Init(1)
	return node.Generate().Int64()
}

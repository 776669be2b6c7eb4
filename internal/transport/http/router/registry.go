package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// Module 把自己的路由挂到引擎上；public 无需登录，authed 已过会话中间件。
type Module interface {
	MountAPI(public, authed *gin.RouterGroup)
}

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），默认 100
type prioritizer interface{ Priority() int }

var (
	mu   sync.RWMutex
	mods []Module
)

func Register(mod Module) {
	mu.Lock()
	defer mu.Unlock()
	mods = append(mods, mod)
}

func MountAll(public, authed *gin.RouterGroup) {
	mu.RLock()
	list := append([]Module(nil), mods...)
	mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return priorityOf(list[i]) < priorityOf(list[j])
	})
	for _, m := range list {
		m.MountAPI(public, authed)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

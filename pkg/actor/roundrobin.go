package actor

type rrCounter struct {
	total   int
	current int
}

// roundRobin 同地址多个 endpoint 之间轮询，只在路由协程中使用
type roundRobin struct {
	counters map[string]*rrCounter
}

// newRoundRobin 按注册表快照初始化，current 置为 total-1，使第一次 next 返回 0
func newRoundRobin(totals map[string]int) *roundRobin {
	rr := &roundRobin{counters: make(map[string]*rrCounter, len(totals))}
	for address, total := range totals {
		if total <= 0 {
			continue
		}
		rr.counters[address] = &rrCounter{total: total, current: total - 1}
	}
	return rr
}

// next 返回 address 下一次使用的下标，未知地址返回 0 且不记录
func (rr *roundRobin) next(address string) int {
	c, ok := rr.counters[address]
	if !ok {
		return 0
	}
	c.current++
	if c.current >= c.total {
		c.current = 0
	}
	return c.current
}

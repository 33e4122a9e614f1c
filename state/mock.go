package state

import "time"

// ReferenceCfg is the classic four node network:
//
//	     1
//	 0 ----- 1
//	 | \     |
//	7|  \3   |1
//	 |   \   |
//	 3 ----- 2
//	     2
//
// followed by the 0 -- 1 link degrading from 1 to 60.
func ReferenceCfg() TopologyCfg {
	inf := DefaultInfinity
	return TopologyCfg{
		Infinity: inf,
		Nodes: []NodeCfg{
			{Id: 0, Links: []Cost{0, 1, 3, 7}},
			{Id: 1, Links: []Cost{1, 0, 1, inf}},
			{Id: 2, Links: []Cost{3, 1, 0, 2}},
			{Id: 3, Links: []Cost{7, inf, 2, 0}},
		},
		Events: []LinkEventCfg{
			{After: 10 * time.Millisecond, A: 0, B: 1, Cost: 60},
		},
		Network: NetworkCfg{
			Latency:   DefaultLatency,
			Jitter:    DefaultJitter,
			InboxSize: DefaultInboxSize,
		},
	}
}

// RingCfg builds n nodes connected in a ring with the given per-edge costs, cost[i] linking i and i+1
func RingCfg(costs []Cost) TopologyCfg {
	cfg := TopologyCfg{}
	n := len(costs)
	for i, c := range costs {
		cfg.Edges = append(cfg.Edges, EdgeCfg{A: NodeId(i), B: NodeId((i + 1) % n), Cost: c})
	}
	return cfg
}

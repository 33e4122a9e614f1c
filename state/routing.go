package state

import (
	"fmt"
	"slices"
)

// NodeId identifies a routing node, in [0, N)
type NodeId int

// Cost is a path or link cost. The topology's infinity value means unreachable.
type Cost int

// LinkCosts is a node's direct link cost vector, indexed by NodeId. The entry for
// the node itself is 0 and Inf marks the absence of a direct link.
type LinkCosts struct {
	Self  NodeId
	Inf   Cost
	Costs []Cost
}

func NewLinkCosts(self NodeId, inf Cost, costs []Cost) LinkCosts {
	if int(self) < 0 || int(self) >= len(costs) {
		panic(fmt.Sprintf("node %d out of range for %d link costs", self, len(costs)))
	}
	return LinkCosts{
		Self:  self,
		Inf:   inf,
		Costs: slices.Clone(costs),
	}
}

func (l LinkCosts) Len() int {
	return len(l.Costs)
}

func (l LinkCosts) Get(id NodeId) Cost {
	l.check(id)
	return l.Costs[id]
}

func (l *LinkCosts) Set(id NodeId, cost Cost) {
	l.check(id)
	l.Costs[id] = cost
}

// IsNeighbour reports whether id is reachable over a single direct link.
// A node is never its own neighbour.
func (l LinkCosts) IsNeighbour(id NodeId) bool {
	l.check(id)
	return id != l.Self && l.Costs[id] < l.Inf
}

func (l LinkCosts) Neighbours() []NodeId {
	neighs := make([]NodeId, 0)
	for i := range l.Costs {
		if l.IsNeighbour(NodeId(i)) {
			neighs = append(neighs, NodeId(i))
		}
	}
	return neighs
}

func (l LinkCosts) check(id NodeId) {
	if int(id) < 0 || int(id) >= len(l.Costs) {
		panic(fmt.Sprintf("node %d out of range [0, %d)", id, len(l.Costs)))
	}
}

// Packet carries the sender's minimum cost vector to one neighbour
type Packet struct {
	Src     NodeId
	Dst     NodeId
	MinCost []Cost
}

func (p Packet) String() string {
	return fmt.Sprintf("(src: %d, dst: %d, mincost: %v)", p.Src, p.Dst, p.MinCost)
}

// AddCost adds two costs, saturating at inf.
func AddCost(a, b, inf Cost) Cost {
	if a >= inf || b >= inf {
		return inf
	}
	return min(a+b, inf)
}

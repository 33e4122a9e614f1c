package state

import (
	"fmt"
	"strings"
)

// DistanceTable holds cost[dest][via], the best known cost to dest when the next hop is via.
// The diagonal always mirrors the direct link costs.
type DistanceTable struct {
	self NodeId
	inf  Cost
	cost [][]Cost
}

// NewDistanceTable creates a table where every entry is inf except the diagonal,
// which is set from the direct link costs.
func NewDistanceTable(links LinkCosts) *DistanceTable {
	n := links.Len()
	t := &DistanceTable{
		self: links.Self,
		inf:  links.Inf,
		cost: make([][]Cost, n),
	}
	for dest := range t.cost {
		t.cost[dest] = make([]Cost, n)
		for via := range t.cost[dest] {
			t.cost[dest][via] = links.Inf
		}
	}
	for i := range n {
		t.cost[i][i] = links.Costs[i]
	}
	return t
}

func (t *DistanceTable) Len() int {
	return len(t.cost)
}

func (t *DistanceTable) Self() NodeId {
	return t.self
}

func (t *DistanceTable) Inf() Cost {
	return t.inf
}

func (t *DistanceTable) Get(dest, via NodeId) Cost {
	t.check(dest)
	t.check(via)
	return t.cost[dest][via]
}

// Relax lowers cost[dest][via] to candidate if it is strictly smaller, and reports whether it did.
// Diagonal entries are direct link measurements and are never relaxed.
func (t *DistanceTable) Relax(dest, via NodeId, candidate Cost) bool {
	t.check(dest)
	t.check(via)
	if dest == via {
		return false
	}
	candidate = min(candidate, t.inf)
	if candidate < t.cost[dest][via] {
		t.cost[dest][via] = candidate
		return true
	}
	return false
}

// Reset overwrites cost[dest][via], allowing increases. It is reserved for link cost changes,
// where the node re-derives the entries learned through the changed link.
func (t *DistanceTable) Reset(dest, via NodeId, cost Cost) bool {
	t.check(dest)
	t.check(via)
	cost = min(cost, t.inf)
	if cost < 0 {
		panic(fmt.Sprintf("negative cost %d for dest %d via %d", cost, dest, via))
	}
	if t.cost[dest][via] == cost {
		return false
	}
	t.cost[dest][via] = cost
	return true
}

// MinCostTo returns the cheapest known cost to dest over every next hop.
// The cost to the node itself is always its own self cost.
func (t *DistanceTable) MinCostTo(dest NodeId) Cost {
	t.check(dest)
	if dest == t.self {
		return t.cost[dest][dest]
	}
	best := t.inf
	for _, c := range t.cost[dest] {
		best = min(best, c)
	}
	return best
}

// NextHop returns the neighbour with the cheapest cost to dest, or false when dest is unreachable.
func (t *DistanceTable) NextHop(dest NodeId) (NodeId, bool) {
	t.check(dest)
	best := t.inf
	nh := NodeId(-1)
	for via, c := range t.cost[dest] {
		if NodeId(via) == t.self {
			continue
		}
		if c < best {
			best = c
			nh = NodeId(via)
		}
	}
	return nh, nh != -1
}

// Routes lists the next hop towards every other destination on one line
func (t *DistanceTable) Routes() string {
	parts := make([]string, 0, len(t.cost))
	for d := range t.cost {
		dest := NodeId(d)
		if dest == t.self {
			continue
		}
		if nh, ok := t.NextHop(dest); ok {
			parts = append(parts, fmt.Sprintf("%d via %d", dest, nh))
		} else {
			parts = append(parts, fmt.Sprintf("%d unreachable", dest))
		}
	}
	return "routes: " + strings.Join(parts, ", ")
}

func (t *DistanceTable) MinCostVector() []Cost {
	vec := make([]Cost, len(t.cost))
	for dest := range t.cost {
		vec[dest] = t.MinCostTo(NodeId(dest))
	}
	return vec
}

// Snapshot returns a deep copy of the table, indexed [dest][via]
func (t *DistanceTable) Snapshot() [][]Cost {
	out := make([][]Cost, len(t.cost))
	for i, row := range t.cost {
		out[i] = append([]Cost(nil), row...)
	}
	return out
}

// String renders the table with one row per destination and one column per next hop,
// leaving out the node's own row and column.
func (t *DistanceTable) String() string {
	sb := strings.Builder{}
	others := make([]int, 0, len(t.cost))
	for i := range t.cost {
		if NodeId(i) != t.self {
			others = append(others, i)
		}
	}
	sb.WriteString(fmt.Sprintf("%10s via\n", ""))
	sb.WriteString(fmt.Sprintf("   D%-3d|", t.self))
	for _, via := range others {
		sb.WriteString(fmt.Sprintf(" %5d", via))
	}
	sb.WriteString("\n  -----|" + strings.Repeat("-", 6*len(others)) + "\n")
	for idx, dest := range others {
		label := "     "
		if idx == len(others)/2 {
			label = "dest "
		}
		sb.WriteString(fmt.Sprintf("%s%2d|", label, dest))
		for _, via := range others {
			sb.WriteString(fmt.Sprintf(" %5d", t.cost[dest][via]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *DistanceTable) check(id NodeId) {
	if int(id) < 0 || int(id) >= len(t.cost) {
		panic(fmt.Sprintf("node %d out of range [0, %d)", id, len(t.cost)))
	}
}

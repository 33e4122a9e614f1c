package core

import (
	"fmt"
	"slices"

	"github.com/encodeous/dvnet/state"
)

type RouterEvent int

// trace events

const (
	TableInitialized RouterEvent = iota
	TableChanged
	TableUnchanged
	LinkCostChanged
	LinkCostUnchanged
)

// warn events

const (
	UntrustedSource RouterEvent = iota + 1000
)

func (e RouterEvent) String() string {
	switch e {
	case TableInitialized:
		return "TableInitialized"
	case TableChanged:
		return "TableChanged"
	case TableUnchanged:
		return "TableUnchanged"
	case LinkCostChanged:
		return "LinkCostChanged"
	case LinkCostUnchanged:
		return "LinkCostUnchanged"
	case UntrustedSource:
		return "UntrustedSource"
	}
	return fmt.Sprintf("RouterEvent(%d)", int(e))
}

func (e RouterEvent) IsWarning() bool {
	return e >= UntrustedSource
}

// Router is an interface that defines the side effects of the routing algorithm
type Router interface {
	// SendUpdate hands a packet to the packet channel. It must not block on delivery.
	SendUpdate(pkt state.Packet)
	// PublishTable exposes the node's table after every handled event, for observation only
	PublishTable(event RouterEvent, table *state.DistanceTable)
	Log(event RouterEvent, desc string, args ...any)
}

// InitRouter builds the node's distance table from its direct link costs and advertises
// the initial minimum cost vector to every neighbour. It must be called exactly once.
func InitRouter(s *state.RouterState, r Router, links state.LinkCosts) {
	if s.Initialized() {
		panic(fmt.Sprintf("router %d initialized twice", s.Id))
	}
	if links.Self != s.Id {
		panic(fmt.Sprintf("router %d given link costs of node %d", s.Id, links.Self))
	}
	if links.Costs[s.Id] != 0 {
		panic(fmt.Sprintf("router %d has non-zero self cost %d", s.Id, links.Costs[s.Id]))
	}
	s.Links = links
	s.Table = state.NewDistanceTable(links)
	s.Adverts = make(map[state.NodeId][]state.Cost)

	r.Log(TableInitialized, "table initialized", "neighbours", s.Links.Neighbours())
	Broadcast(s, r)
	r.PublishTable(TableInitialized, s.Table)
}

// HandleUpdate folds a neighbour's minimum cost vector into the table with Bellman-Ford
// relaxation, and re-advertises if anything changed. It reports whether the table changed.
func HandleUpdate(s *state.RouterState, r Router, pkt state.Packet) bool {
	mustBeInitialized(s)
	if pkt.Dst != s.Id {
		panic(fmt.Sprintf("router %d received packet addressed to %d", s.Id, pkt.Dst))
	}
	if len(pkt.MinCost) != s.Len() {
		panic(fmt.Sprintf("router %d received vector of length %d, expected %d", s.Id, len(pkt.MinCost), s.Len()))
	}

	// we only trust nodes we can measure directly
	if !s.IsNeighbour(pkt.Src) {
		r.Log(UntrustedSource, "ignored update from non-neighbour", "from", pkt.Src)
		r.PublishTable(UntrustedSource, s.Table)
		return false
	}
	s.Adverts[pkt.Src] = slices.Clone(pkt.MinCost)

	linkCost := s.Links.Get(pkt.Src)
	changed := false
	for d, adv := range pkt.MinCost {
		dest := state.NodeId(d)
		if dest == s.Id {
			continue
		}
		if s.Table.Relax(dest, pkt.Src, state.AddCost(linkCost, adv, s.Inf())) {
			changed = true
		}
	}

	event := TableUnchanged
	if changed {
		event = TableChanged
		r.Log(TableChanged, "table changed", "from", pkt.Src, "adv", pkt.MinCost)
		Broadcast(s, r)
	}
	r.PublishTable(event, s.Table)
	return changed
}

// HandleLinkChange applies a new direct cost to neigh. The diagonal entry is overwritten, and
// every entry learned through neigh is recomputed from its last advertisement, which may raise
// costs. Stale lower costs that other nodes learned through this link are not retracted.
// It reports whether the table changed.
func HandleLinkChange(s *state.RouterState, r Router, neigh state.NodeId, cost state.Cost) bool {
	mustBeInitialized(s)
	if neigh == s.Id {
		panic(fmt.Sprintf("router %d cannot change its own self cost", s.Id))
	}
	if cost < 0 || cost > s.Inf() {
		panic(fmt.Sprintf("router %d given link cost %d outside [0, %d]", s.Id, cost, s.Inf()))
	}
	old := s.Links.Get(neigh)
	if old == cost {
		r.Log(LinkCostUnchanged, "link cost unchanged", "neigh", neigh, "cost", cost)
		return false
	}
	s.Links.Set(neigh, cost)
	changed := s.Table.Reset(neigh, neigh, cost)

	adv, ok := s.Adverts[neigh]
	if cost >= s.Inf() {
		// the link is gone, its old advertisement must not be reused if it comes back
		delete(s.Adverts, neigh)
		ok = false
	}
	for d := range s.Len() {
		dest := state.NodeId(d)
		if dest == s.Id || dest == neigh {
			continue
		}
		derived := s.Inf()
		if ok {
			derived = state.AddCost(cost, adv[dest], s.Inf())
		}
		if s.Table.Reset(dest, neigh, derived) {
			changed = true
		}
	}

	r.Log(LinkCostChanged, "link cost changed", "neigh", neigh, "old", old, "new", cost)
	event := TableUnchanged
	if changed {
		event = TableChanged
		Broadcast(s, r)
	}
	r.PublishTable(event, s.Table)
	return changed
}

// Broadcast sends the current minimum cost vector to every neighbour
func Broadcast(s *state.RouterState, r Router) {
	vec := s.Table.MinCostVector()
	for _, neigh := range s.Links.Neighbours() {
		r.SendUpdate(state.Packet{
			Src:     s.Id,
			Dst:     neigh,
			MinCost: slices.Clone(vec),
		})
	}
}

func mustBeInitialized(s *state.RouterState) {
	if !s.Initialized() {
		panic(fmt.Sprintf("router %d used before initialization", s.Id))
	}
}

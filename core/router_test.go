package core

import (
	"testing"

	"github.com/encodeous/dvnet/state"
	"github.com/stretchr/testify/assert"
)

const inf = state.DefaultInfinity

func TestInitBroadcast(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 0)
	assert.Equal(t,
		`SEND_UPDATE 1 [0 1 3 7]
SEND_UPDATE 2 [0 1 3 7]
SEND_UPDATE 3 [0 1 3 7]`,
		h.GetActions().String())
	assert.Equal(t, []RouterEvent{TableInitialized}, h.published)
	assert.Equal(t, [][]state.Cost{
		{0, inf, inf, inf},
		{inf, 1, inf, inf},
		{inf, inf, 3, inf},
		{inf, inf, inf, 7},
	}, rs.Table.Snapshot())

	// node 1 has no link to node 3
	h = &RouterHarness{}
	MakeRouter(h, 1)
	assert.Equal(t,
		`SEND_UPDATE 0 [1 0 1 999]
SEND_UPDATE 2 [1 0 1 999]`,
		h.GetActions().String())
}

func TestHandleUpdate(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 0)
	h.GetActions()

	// node 2's initial advertisement
	assert.True(t, h.Update(rs, 2, 3, 1, 0, 2))
	assert.Equal(t, state.Cost(5), rs.Table.Get(3, 2))
	assert.Equal(t, state.Cost(4), rs.Table.Get(1, 2))
	assert.Equal(t,
		`SEND_UPDATE 1 [0 1 3 5]
SEND_UPDATE 2 [0 1 3 5]
SEND_UPDATE 3 [0 1 3 5]`,
		h.GetActions().String())

	// node 1's initial advertisement, which cannot reach node 3 yet
	assert.True(t, h.Update(rs, 1, 1, 0, 1, inf))
	assert.Equal(t, inf, rs.Table.Get(3, 1))
	assert.Equal(t, state.Cost(2), rs.Table.MinCostTo(2))
	h.GetActions().AssertContains(t, "SEND_UPDATE", state.NodeId(1), Vec(0, 1, 2, 5))

	// node 1 learned about node 3 through node 2
	assert.True(t, h.Update(rs, 1, 1, 0, 1, 3))
	assert.Equal(t, state.Cost(4), rs.Table.MinCostTo(3))
	h.GetActions().AssertContains(t, "SEND_UPDATE", state.NodeId(3), Vec(0, 1, 2, 4))
	assert.Equal(t, []RouterEvent{TableInitialized, TableChanged, TableChanged, TableChanged}, h.published)
}

func TestDuplicateUpdateIsIdempotent(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 0)
	h.GetActions()

	assert.True(t, h.Update(rs, 2, 3, 1, 0, 2))
	h.GetActions()
	before := rs.Table.Snapshot()

	assert.False(t, h.Update(rs, 2, 3, 1, 0, 2))
	assert.Empty(t, h.GetActions())
	assert.Equal(t, before, rs.Table.Snapshot())
	assert.Equal(t, TableUnchanged, h.published[len(h.published)-1])
}

func TestWorseUpdateIsIgnored(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 0)
	h.Update(rs, 2, 3, 1, 0, 2)
	h.GetActions()

	// relaxation never raises a cost
	assert.False(t, h.Update(rs, 2, 3, 50, 0, 50))
	assert.Empty(t, h.GetActions())
	assert.Equal(t, state.Cost(5), rs.Table.Get(3, 2))
}

func TestNonNeighbourUpdateRejected(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 1)
	h.GetActions()
	before := rs.Table.Snapshot()

	assert.False(t, h.Update(rs, 3, 0, 0, 0, 0))
	assert.Equal(t, before, rs.Table.Snapshot())
	assert.Contains(t, h.GetLogs(), UntrustedSource)
	assert.Empty(t, h.GetActions())
	assert.NotContains(t, rs.Adverts, state.NodeId(3))
}

func TestSelfCostIntegrity(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 0)

	// neighbours claiming a free path back to themselves must not touch the diagonal
	h.Update(rs, 1, 0, 0, 0, 0)
	h.Update(rs, 2, 0, 0, 0, 0)
	h.Update(rs, 3, 0, 0, 0, 0)
	for i := range rs.Len() {
		id := state.NodeId(i)
		assert.Equal(t, rs.Links.Get(id), rs.Table.Get(id, id))
	}

	HandleLinkChange(rs, h, 3, 2)
	assert.Equal(t, state.Cost(2), rs.Table.Get(3, 3))
	assert.Equal(t, state.Cost(0), rs.Table.MinCostTo(0))
}

// converged feeds node 0 the final vectors of its neighbours in the reference topology
func converged(t *testing.T, h *RouterHarness) *state.RouterState {
	rs := MakeRouter(h, 0)
	h.Update(rs, 1, 1, 0, 1, 3)
	h.Update(rs, 2, 2, 1, 0, 2)
	h.Update(rs, 3, 4, 3, 2, 0)
	h.GetActions()
	assert.Equal(t, [][]state.Cost{
		{0, inf, inf, inf},
		{inf, 1, 4, 10},
		{inf, 2, 3, 9},
		{inf, 4, 5, 7},
	}, rs.Table.Snapshot())
	assert.Equal(t, Vec(0, 1, 2, 4), rs.Table.MinCostVector())
	return rs
}

func TestLinkCostIncrease(t *testing.T) {
	h := &RouterHarness{}
	rs := converged(t, h)
	before := rs.Table.Snapshot()

	assert.True(t, HandleLinkChange(rs, h, 1, 60))
	assert.Equal(t, state.Cost(60), rs.Links.Get(1))
	assert.Equal(t, state.Cost(60), rs.Table.Get(1, 1))
	assert.Equal(t, state.Cost(61), rs.Table.Get(2, 1))
	assert.Equal(t, state.Cost(63), rs.Table.Get(3, 1))
	for d := 1; d < 4; d++ {
		assert.GreaterOrEqual(t, rs.Table.Get(state.NodeId(d), 1), before[d][1])
	}
	assert.Equal(t,
		`SEND_UPDATE 1 [0 4 3 5]
SEND_UPDATE 2 [0 4 3 5]
SEND_UPDATE 3 [0 4 3 5]`,
		h.GetActions().String())

	// applying the same cost again does nothing
	assert.False(t, HandleLinkChange(rs, h, 1, 60))
	assert.Contains(t, h.GetLogs(), LinkCostUnchanged)
	assert.Empty(t, h.GetActions())
}

func TestLinkDownAndUp(t *testing.T) {
	h := &RouterHarness{}
	rs := converged(t, h)

	assert.True(t, HandleLinkChange(rs, h, 1, inf))
	assert.False(t, rs.IsNeighbour(1))
	for d := 1; d < 4; d++ {
		assert.Equal(t, inf, rs.Table.Get(state.NodeId(d), 1))
	}
	a := h.GetActions()
	assert.Equal(t,
		`SEND_UPDATE 2 [0 4 3 5]
SEND_UPDATE 3 [0 4 3 5]`,
		a.String())
	a.AssertNotContains(t, "SEND_UPDATE", state.NodeId(1))

	// node 1 is no longer trusted
	assert.False(t, h.Update(rs, 1, 1, 0, 1, 3))

	// the link comes back, old advertisements from node 1 are not reused
	assert.True(t, HandleLinkChange(rs, h, 1, 1))
	assert.Equal(t, state.Cost(1), rs.Table.Get(1, 1))
	assert.Equal(t, inf, rs.Table.Get(3, 1))
	assert.Equal(t,
		`SEND_UPDATE 1 [0 1 3 5]
SEND_UPDATE 2 [0 1 3 5]
SEND_UPDATE 3 [0 1 3 5]`,
		h.GetActions().String())
}

func TestLinkCostDecrease(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 3)
	h.GetActions()

	assert.True(t, HandleLinkChange(rs, h, 0, 1))
	assert.Equal(t,
		`SEND_UPDATE 0 [1 999 2 0]
SEND_UPDATE 2 [1 999 2 0]`,
		h.GetActions().String())
}

func TestDownstreamRebroadcastOnlyOnChange(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 2)
	h.Update(rs, 0, 0, 1, 2, 4)
	h.Update(rs, 1, 1, 0, 1, 3)
	h.Update(rs, 3, 4, 3, 2, 0)
	h.GetActions()
	before := rs.Table.Snapshot()

	// node 0 after its link to node 1 degraded to 60
	assert.False(t, h.Update(rs, 0, 0, 4, 3, 5))
	assert.Empty(t, h.GetActions())
	assert.Equal(t, before, rs.Table.Snapshot())
}

func TestContractViolations(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter(h, 0)

	assert.Panics(t, func() {
		h.Update(rs, 1, 0, 1)
	}, "wrong vector length")
	assert.Panics(t, func() {
		HandleUpdate(rs, h, state.Packet{Src: 1, Dst: 2, MinCost: Vec(0, 0, 0, 0)})
	}, "misaddressed packet")
	assert.Panics(t, func() {
		h.Update(rs, 7, 0, 0, 0, 0)
	}, "source out of range")
	assert.Panics(t, func() {
		HandleLinkChange(rs, h, 0, 5)
	}, "self cost change")
	assert.Panics(t, func() {
		HandleLinkChange(rs, h, 1, -3)
	}, "negative cost")
	assert.Panics(t, func() {
		HandleLinkChange(rs, h, 1, inf+1)
	}, "cost above infinity")
	cfg := state.ReferenceCfg()
	assert.Panics(t, func() {
		InitRouter(rs, h, cfg.GetLinks(0))
	}, "initialized twice")

	fresh := &state.RouterState{Id: 2}
	assert.Panics(t, func() {
		h.Update(fresh, 1, 0, 0, 0, 0)
	}, "used before init")
	assert.Panics(t, func() {
		InitRouter(fresh, h, cfg.GetLinks(1))
	}, "wrong node's links")
}

func TestRouterEventString(t *testing.T) {
	assert.Equal(t, "TableChanged", TableChanged.String())
	assert.Equal(t, "UntrustedSource", UntrustedSource.String())
	assert.Equal(t, "RouterEvent(42)", RouterEvent(42).String())
	assert.True(t, UntrustedSource.IsWarning())
	assert.False(t, LinkCostChanged.IsWarning())
}

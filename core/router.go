package core

import (
	"fmt"
	"time"

	"github.com/encodeous/dvnet/perf"
	"github.com/encodeous/dvnet/state"
)

// Transport delivers packets between nodes, see PacketChannel
type Transport interface {
	Send(pkt state.Packet)
}

// DvRouter binds the routing algorithm of one node to the network around it
type DvRouter struct {
	*state.State
	Links     state.LinkCosts
	Transport Transport
	Trace     *Trace
}

func (r *DvRouter) SendUpdate(pkt state.Packet) {
	perf.PacketsSent.Add(1)
	r.Transport.Send(pkt)
}

func (r *DvRouter) PublishTable(event RouterEvent, table *state.DistanceTable) {
	if event == TableChanged {
		perf.TableChanges.Add(1)
	}
	if r.Trace == nil {
		return
	}
	r.Trace.Publish(TableEvent{
		Node:    r.RouterState.Id,
		Event:   event,
		Table:   table.Snapshot(),
		MinCost: table.MinCostVector(),
		Time:    time.Now(),
	})
}

func (r *DvRouter) Log(event RouterEvent, desc string, args ...any) {
	if event.IsWarning() {
		r.Env.Log.Warn(fmt.Sprintf("%s %s", event.String(), desc), args...)
		return
	}
	r.Env.Log.Debug(fmt.Sprintf("%s %s", event.String(), desc), args...)
}

func (r *DvRouter) Init(s *state.State) error {
	s.Log.Debug("init router")
	r.State = s
	s.RouterState = &state.RouterState{
		Id: r.Links.Self,
	}
	InitRouter(s.RouterState, r, r.Links)
	return nil
}

func (r *DvRouter) Cleanup(s *state.State) error {
	r.State = nil
	return nil
}

// packet handlers

func routerHandleUpdate(pkt state.Packet) func(s *state.State) error {
	return func(s *state.State) error {
		r := Get[*DvRouter](s)
		perf.PacketsDelivered.Add(1)
		if !s.IsNeighbour(pkt.Src) {
			perf.PacketsIgnored.Add(1)
		}
		HandleUpdate(s.RouterState, r, pkt)
		return nil
	}
}

func routerHandleLinkChange(neigh state.NodeId, cost state.Cost) func(s *state.State) error {
	return func(s *state.State) error {
		r := Get[*DvRouter](s)
		perf.LinkChanges.Add(1)
		HandleLinkChange(s.RouterState, r, neigh, cost)
		return nil
	}
}

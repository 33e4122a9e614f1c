//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/dvnet/core"
	"github.com/encodeous/dvnet/state"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
func (s Signal) Wait() {
	<-s
}

type VirtualLink struct {
	Edge state.Pair[state.NodeId, state.NodeId]
	Cost state.Cost
}

// TableFilter is called for every table published by a node
type TableFilter func(ev core.TableEvent)

func (f TableFilter) TryApply(ev core.TableEvent) {
	if f == nil {
		return
	}
	f(ev)
}

type VirtualHarness struct {
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Topology state.TopologyCfg
	Net      *core.Network
	Links    []*VirtualLink
	Verbose  bool

	mu       sync.Mutex
	onTable  TableFilter
	unsub    func()
	traceEnd chan struct{}
}

func (v *VirtualHarness) NewNodes(n int) {
	for range n {
		v.Topology.Nodes = append(v.Topology.Nodes, state.NodeCfg{Id: state.NodeId(len(v.Topology.Nodes))})
	}
}

func (v *VirtualHarness) AddLink(a, b state.NodeId, cost state.Cost) *VirtualLink {
	link := &VirtualLink{
		Edge: state.MakeSortedPair(a, b),
		Cost: cost,
	}
	v.Links = append(v.Links, link)
	return link
}

func (v *VirtualHarness) WithLatency(lat, jitter time.Duration) *VirtualHarness {
	v.Topology.Network.Latency = lat
	v.Topology.Network.Jitter = jitter
	return v
}

// OnTable replaces the filter that observes published tables
func (v *VirtualHarness) OnTable(f TableFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onTable = f
}

func (v *VirtualHarness) Start() error {
	ctx, cancel := context.WithCancelCause(context.Background())
	v.Context = ctx
	v.Cancel = cancel

	n := len(v.Topology.Nodes)
	for i := range v.Topology.Nodes {
		links := make([]state.Cost, n)
		for j := range links {
			links[j] = state.DefaultInfinity
		}
		links[i] = 0
		v.Topology.Nodes[i].Links = links
	}
	for _, link := range v.Links {
		v.Topology.Edges = append(v.Topology.Edges, state.EdgeCfg{A: link.Edge.V1, B: link.Edge.V2, Cost: link.Cost})
	}
	err := state.ExpandTopology(&v.Topology)
	if err != nil {
		return err
	}
	err = state.TopologyValidator(&v.Topology)
	if err != nil {
		return err
	}

	opts := core.LogOptions{}
	if v.Verbose {
		opts.Console = os.Stderr
	}
	v.Net = core.NewNetwork(&v.Topology, opts)

	ch, unsub := v.Net.Trace.Subscribe()
	v.unsub = unsub
	v.traceEnd = make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-ch:
				if ev == nil {
					return
				}
				v.mu.Lock()
				f := v.onTable
				v.mu.Unlock()
				f.TryApply(ev.(core.TableEvent))
			case <-v.traceEnd:
				return
			}
		}
	}()
	return v.Net.Start(ctx)
}

// SetLink changes the cost of an existing or new link on both ends
func (v *VirtualHarness) SetLink(a, b state.NodeId, cost state.Cost) error {
	edge := state.MakeSortedPair(a, b)
	idx := slices.IndexFunc(v.Links, func(link *VirtualLink) bool {
		return link.Edge == edge
	})
	if idx == -1 {
		v.Links = append(v.Links, &VirtualLink{Edge: edge, Cost: cost})
	} else {
		v.Links[idx].Cost = cost
	}
	return v.Net.ChangeLink(a, b, cost)
}

func (v *VirtualHarness) WaitQuiescent(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(v.Context, timeout)
	defer cancel()
	return v.Net.WaitQuiescent(ctx)
}

func (v *VirtualHarness) Stop() {
	println("Stopping VirtualHarness")
	v.Cancel(fmt.Errorf("stopping harness"))
	err := v.Net.Stop()
	if err != nil {
		println("error stopping network:", err.Error())
	}
	close(v.traceEnd)
	v.unsub()
	println("Stopped VirtualHarness")
}

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/encodeous/dvnet/state"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrNetworkStopped = errors.New("network stopped")

type Stats struct {
	Sent        atomic.Int64
	Delivered   atomic.Int64
	LinkChanges atomic.Int64
}

// Network owns every routing node of a topology, delivers their packets and
// drives link cost changes. Nodes only interact through packets.
type Network struct {
	RunId   uuid.UUID
	Cfg     *state.TopologyCfg
	Log     *slog.Logger
	Trace   *Trace
	Channel *PacketChannel
	Stats   Stats

	logOpts    LogOptions
	nodes      []*state.State
	dispatches []chan func(*state.State) error
	linksMu    sync.Mutex
	links      [][]state.Cost
	// pending counts packets in flight plus events queued or running on a node
	pending atomic.Int64
	stopped atomic.Bool
	ctx     context.Context
	cancel  context.CancelCauseFunc
	group   *errgroup.Group
}

func NewNetwork(cfg *state.TopologyCfg, logOpts LogOptions) *Network {
	runId := uuid.New()
	return &Network{
		RunId:   runId,
		Cfg:     cfg,
		Log:     NewLogger("net", logOpts).With("run", runId.String()),
		Trace:   NewTrace(),
		logOpts: logOpts,
	}
}

func (n *Network) Len() int {
	return len(n.nodes)
}

// Start creates and initializes every node, then runs each node's main loop on its own goroutine.
// Initial advertisements are already in flight when Start returns.
func (n *Network) Start(ctx context.Context) error {
	if n.nodes != nil {
		return errors.New("network already started")
	}
	group, gctx := errgroup.WithContext(ctx)
	n.ctx, n.cancel = context.WithCancelCause(gctx)
	n.group = group
	n.Channel = &PacketChannel{
		Latency: n.Cfg.Network.Latency,
		Jitter:  n.Cfg.Network.Jitter,
		net:     n,
	}
	n.links = n.Cfg.LinkMatrix()

	count := n.Cfg.Len()
	n.nodes = make([]*state.State, count)
	n.dispatches = make([]chan func(*state.State) error, count)
	for i := range count {
		nctx, ncancel := context.WithCancelCause(n.ctx)
		dispatch := make(chan func(*state.State) error, n.Cfg.Network.InboxSize)
		n.dispatches[i] = dispatch
		n.nodes[i] = &state.State{
			Modules: make(map[string]state.NyModule),
			Env: &state.Env{
				DispatchChannel: dispatch,
				Context:         nctx,
				Cancel:          ncancel,
				Log:             NewLogger(strconv.Itoa(i), n.logOpts),
			},
		}
	}

	n.Log.Info("init nodes", "count", count)
	for i, s := range n.nodes {
		err := initModules(s, &DvRouter{
			Links:     n.Cfg.GetLinks(state.NodeId(i)),
			Transport: n.Channel,
			Trace:     n.Trace,
		})
		if err != nil {
			n.cancel(err)
			return fmt.Errorf("failed to init node %d: %w", i, err)
		}
	}

	for i, s := range n.nodes {
		dispatch := n.dispatches[i]
		group.Go(func() error {
			return MainLoop(s, dispatch)
		})
	}
	n.Log.Info("network started")
	return nil
}

func (n *Network) dispatch(id state.NodeId, fun func(*state.State) error) bool {
	ok := n.nodes[id].Dispatch(func(s *state.State) error {
		defer n.pending.Add(-1)
		return fun(s)
	})
	if !ok {
		n.pending.Add(-1)
	}
	return ok
}

func (n *Network) node(id state.NodeId) (*state.State, error) {
	if int(id) < 0 || int(id) >= len(n.nodes) {
		return nil, fmt.Errorf("node %d does not exist", id)
	}
	return n.nodes[id], nil
}

// Pending returns the number of packets and events that have not finished processing
func (n *Network) Pending() int64 {
	return n.pending.Load()
}

// WaitQuiescent blocks until no packet is in flight and no node has work queued.
func (n *Network) WaitQuiescent(ctx context.Context) error {
	ticker := time.NewTicker(state.QuiescencePollDelay)
	defer ticker.Stop()
	for {
		if n.ctx.Err() != nil {
			return context.Cause(n.ctx)
		}
		if n.pending.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.ctx.Done():
			return context.Cause(n.ctx)
		case <-ticker.C:
		}
	}
}

func (n *Network) checkLink(node, neigh state.NodeId, cost state.Cost) error {
	if _, err := n.node(node); err != nil {
		return err
	}
	if _, err := n.node(neigh); err != nil {
		return err
	}
	if node == neigh {
		return fmt.Errorf("cannot change the self cost of node %d", node)
	}
	if cost < 0 || cost > n.Cfg.Infinity {
		return fmt.Errorf("link cost %d outside [0, %d]", cost, n.Cfg.Infinity)
	}
	return nil
}

func (n *Network) setLink(node, neigh state.NodeId, cost state.Cost) {
	n.linksMu.Lock()
	n.links[node][neigh] = cost
	n.linksMu.Unlock()
	n.Stats.LinkChanges.Add(1)
}

// SetLinkCost changes the cost node measures for its direct link to neigh, leaving neigh's view untouched.
func (n *Network) SetLinkCost(node, neigh state.NodeId, cost state.Cost) error {
	if err := n.checkLink(node, neigh, cost); err != nil {
		return err
	}
	n.setLink(node, neigh, cost)
	n.pending.Add(1)
	if !n.dispatch(node, routerHandleLinkChange(neigh, cost)) {
		return ErrNetworkStopped
	}
	return nil
}

// ScheduleLinkChange changes the cost of the link between a and b after delay, as seen from both ends.
// The change counts as pending work from the moment it is scheduled.
func (n *Network) ScheduleLinkChange(a, b state.NodeId, cost state.Cost, delay time.Duration) error {
	if err := n.checkLink(a, b, cost); err != nil {
		return err
	}
	if n.ctx.Err() != nil {
		return ErrNetworkStopped
	}
	n.pending.Add(1)
	n.nodes[a].ScheduleTask(func(s *state.State) error {
		defer n.pending.Add(-1)
		n.Log.Info("changing link cost", "a", a, "b", b, "cost", cost)
		n.setLink(a, b, cost)
		if err := routerHandleLinkChange(b, cost)(s); err != nil {
			return err
		}
		err := n.SetLinkCost(b, a, cost)
		if errors.Is(err, ErrNetworkStopped) {
			return nil
		}
		return err
	}, delay)
	return nil
}

// ChangeLink changes the cost of the link between a and b, as seen from both ends
func (n *Network) ChangeLink(a, b state.NodeId, cost state.Cost) error {
	n.Log.Info("changing link cost", "a", a, "b", b, "cost", cost)
	err := n.SetLinkCost(a, b, cost)
	if err != nil {
		return err
	}
	return n.SetLinkCost(b, a, cost)
}

// Links returns the current direct link matrix, indexed [from][to]
func (n *Network) Links() [][]state.Cost {
	n.linksMu.Lock()
	defer n.linksMu.Unlock()
	out := make([][]state.Cost, len(n.links))
	for i, row := range n.links {
		out[i] = slices.Clone(row)
	}
	return out
}

func query[T any](n *Network, id state.NodeId, fun func(s *state.State) T) (T, error) {
	var zero T
	s, err := n.node(id)
	if err != nil {
		return zero, err
	}
	res, err := s.DispatchWait(func(s *state.State) (any, error) {
		return fun(s), nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

// Snapshot returns a copy of the node's distance table, indexed [dest][via]
func (n *Network) Snapshot(id state.NodeId) ([][]state.Cost, error) {
	return query(n, id, func(s *state.State) [][]state.Cost {
		return s.Table.Snapshot()
	})
}

// MinCosts returns the node's current minimum cost vector
func (n *Network) MinCosts(id state.NodeId) ([]state.Cost, error) {
	return query(n, id, func(s *state.State) []state.Cost {
		return s.Table.MinCostVector()
	})
}

// Render returns the node's distance table formatted for display
func (n *Network) Render(id state.NodeId) (string, error) {
	return query(n, id, func(s *state.State) string {
		return s.Table.String() + s.Table.Routes() + "\n"
	})
}

// Verify compares every node's minimum cost vector against the shortest paths over
// the current link costs. After a cost increase, nodes may keep stale lower costs.
func (n *Network) Verify() error {
	expected := state.ShortestPaths(n.Links(), n.Cfg.Infinity)
	errs := make([]error, 0)
	for i := range n.nodes {
		got, err := n.MinCosts(state.NodeId(i))
		if err != nil {
			return err
		}
		for d, c := range got {
			if c != expected[i][d] {
				errs = append(errs, fmt.Errorf("node %d: cost to %d is %d, expected %d", i, d, c, expected[i][d]))
			}
		}
	}
	return errors.Join(errs...)
}

// RunEvents applies the configured link events in order. Each event is scheduled after its delay,
// applied to both ends of the link, and then runs to quiescence before after is called.
func (n *Network) RunEvents(ctx context.Context, after func(ev state.LinkEventCfg) error) error {
	for _, ev := range n.Cfg.Events {
		err := n.ScheduleLinkChange(ev.A, ev.B, ev.Cost, ev.After)
		if err != nil {
			return err
		}
		err = n.WaitQuiescent(ctx)
		if err != nil {
			return err
		}
		if after != nil {
			err = after(ev)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Stop stops every node and waits for their goroutines and any packets in flight.
func (n *Network) Stop() error {
	if n.cancel == nil || n.stopped.Swap(true) {
		return nil
	}
	n.cancel(ErrNetworkStopped)
	err := n.group.Wait()
	n.Channel.Wait()
	n.Log.Info("network stopped",
		"sent", n.Stats.Sent.Load(),
		"delivered", n.Stats.Delivered.Load(),
		"link_changes", n.Stats.LinkChanges.Load(),
		"trace_dropped", n.Trace.Dropped.Load())
	return errors.Join(err, n.Trace.Close())
}

package state

import (
	"fmt"
)

// LinkCostsValidator checks a single node's direct link vector against a network of n nodes
func LinkCostsValidator(id NodeId, links []Cost, n int, inf Cost) error {
	if !inRange(id, n) {
		return fmt.Errorf("node id %d out of range [0, %d)", id, n)
	}
	if len(links) != n {
		return fmt.Errorf("node %d has %d link costs, expected %d", id, len(links), n)
	}
	for to, c := range links {
		if c < 0 {
			return fmt.Errorf("node %d has negative link cost %d to %d", id, c, to)
		}
		if c > inf {
			return fmt.Errorf("node %d has link cost %d to %d, which exceeds infinity (%d)", id, c, to, inf)
		}
	}
	if links[id] != 0 {
		return fmt.Errorf("node %d must have a self cost of 0, got %d", id, links[id])
	}
	return nil
}

func TopologyValidator(cfg *TopologyCfg) error {
	n := len(cfg.Nodes)
	if n == 0 {
		return fmt.Errorf("topology must contain at least one node")
	}
	if cfg.Infinity <= 0 {
		return fmt.Errorf("infinity must be positive, got %d", cfg.Infinity)
	}
	seen := make([]bool, n)
	maxLink := Cost(0)
	for _, node := range cfg.Nodes {
		err := LinkCostsValidator(node.Id, node.Links, n, cfg.Infinity)
		if err != nil {
			return err
		}
		if seen[node.Id] {
			return fmt.Errorf("duplicate node id %d", node.Id)
		}
		seen[node.Id] = true
		for _, c := range node.Links {
			if c < cfg.Infinity {
				maxLink = max(maxLink, c)
			}
		}
	}
	for _, ev := range cfg.Events {
		if !inRange(ev.A, n) || !inRange(ev.B, n) {
			return fmt.Errorf("link event %d, %d references an unknown node", ev.A, ev.B)
		}
		if ev.A == ev.B {
			return fmt.Errorf("link event %d, %d changes a self cost", ev.A, ev.B)
		}
		if ev.Cost < 0 || ev.Cost > cfg.Infinity {
			return fmt.Errorf("link event %d, %d has cost %d outside [0, %d]", ev.A, ev.B, ev.Cost, cfg.Infinity)
		}
		if ev.After < 0 {
			return fmt.Errorf("link event %d, %d has a negative delay", ev.A, ev.B)
		}
		if ev.Cost < cfg.Infinity {
			maxLink = max(maxLink, ev.Cost)
		}
	}
	// a simple path has at most n-1 hops
	if Cost(n)*maxLink >= cfg.Infinity {
		return fmt.Errorf("infinity (%d) must exceed %d nodes x max link cost %d", cfg.Infinity, n, maxLink)
	}
	if cfg.Network.Latency < 0 || cfg.Network.Jitter < 0 {
		return fmt.Errorf("network latency and jitter must not be negative")
	}
	if cfg.Network.InboxSize <= 0 {
		return fmt.Errorf("inbox size must be positive, got %d", cfg.Network.InboxSize)
	}
	return nil
}

package state

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

type NodeCfg struct {
	Id    NodeId
	Links []Cost `yaml:",flow"`
}

// EdgeCfg is an undirected link, expanded into both nodes' link vectors
type EdgeCfg struct {
	A    NodeId
	B    NodeId
	Cost Cost
}

// LinkEventCfg changes the cost of the link between A and B once the network has settled
// and After has elapsed. Both ends of the link observe the change.
type LinkEventCfg struct {
	After time.Duration `yaml:",omitempty"`
	A     NodeId
	B     NodeId
	Cost  Cost
}

type NetworkCfg struct {
	Latency   time.Duration `yaml:",omitempty"` // base delivery delay of every packet
	Jitter    time.Duration `yaml:",omitempty"` // random extra delay added on top of Latency
	InboxSize int           `yaml:"inbox_size,omitempty"`
}

// TopologyCfg describes a whole simulated network
type TopologyCfg struct {
	Infinity Cost           `yaml:",omitempty"`
	Nodes    []NodeCfg      `yaml:",omitempty"`
	Edges    []EdgeCfg      `yaml:",omitempty"`
	Events   []LinkEventCfg `yaml:",omitempty"`
	Network  NetworkCfg     `yaml:",omitempty"`
}

func (c *TopologyCfg) Len() int {
	return len(c.Nodes)
}

// GetLinks returns the direct link costs of node id
func (c *TopologyCfg) GetLinks(id NodeId) LinkCosts {
	idx := slices.IndexFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		panic(fmt.Sprintf("node %d not found", id))
	}
	return NewLinkCosts(id, c.Infinity, c.Nodes[idx].Links)
}

// LinkMatrix returns the direct link costs of every node, indexed [from][to]
func (c *TopologyCfg) LinkMatrix() [][]Cost {
	m := make([][]Cost, len(c.Nodes))
	for _, n := range c.Nodes {
		m[n.Id] = slices.Clone(n.Links)
	}
	return m
}

func LoadTopology(path string) (*TopologyCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseTopology(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func ParseTopology(data []byte) (*TopologyCfg, error) {
	var cfg TopologyCfg
	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}
	err = ExpandTopology(&cfg)
	if err != nil {
		return nil, err
	}
	err = TopologyValidator(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveTopology(path string, cfg *TopologyCfg) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandTopology fills in defaults and folds Edges into the node link vectors.
// If no nodes are listed, they are created from the largest id referenced by an edge.
func ExpandTopology(cfg *TopologyCfg) error {
	if cfg.Infinity == 0 {
		cfg.Infinity = DefaultInfinity
	}
	if cfg.Network.InboxSize == 0 {
		cfg.Network.InboxSize = DefaultInboxSize
	}

	if len(cfg.Nodes) == 0 {
		n := NodeId(-1)
		for _, edge := range cfg.Edges {
			n = max(n, edge.A, edge.B)
		}
		for id := range n + 1 {
			links := make([]Cost, n+1)
			for i := range links {
				links[i] = cfg.Infinity
			}
			links[id] = 0
			cfg.Nodes = append(cfg.Nodes, NodeCfg{Id: id, Links: links})
		}
	}

	seen := make([]Pair[NodeId, NodeId], 0)
	for _, edge := range cfg.Edges {
		if !inRange(edge.A, len(cfg.Nodes)) || !inRange(edge.B, len(cfg.Nodes)) {
			return fmt.Errorf("edge %d, %d references an unknown node", edge.A, edge.B)
		}
		if edge.A == edge.B {
			return fmt.Errorf("edge %d, %d is a self loop", edge.A, edge.B)
		}
		p := MakeSortedPair(edge.A, edge.B)
		if slices.Contains(seen, p) {
			return fmt.Errorf("duplicate edge found: %d, %d", p.V1, p.V2)
		}
		seen = append(seen, p)
		for _, end := range []Pair[NodeId, NodeId]{{edge.A, edge.B}, {edge.B, edge.A}} {
			idx := slices.IndexFunc(cfg.Nodes, func(n NodeCfg) bool {
				return n.Id == end.V1
			})
			if idx == -1 {
				return fmt.Errorf("node %d not defined", end.V1)
			}
			if int(end.V2) >= len(cfg.Nodes[idx].Links) {
				return fmt.Errorf("node %d has %d link costs, edge to %d does not fit", end.V1, len(cfg.Nodes[idx].Links), end.V2)
			}
			cfg.Nodes[idx].Links[end.V2] = edge.Cost
		}
	}
	cfg.Edges = nil

	slices.SortFunc(cfg.Nodes, func(a, b NodeCfg) int {
		return int(a.Id) - int(b.Id)
	})
	return nil
}

func inRange(id NodeId, n int) bool {
	return int(id) >= 0 && int(id) < n
}

package state

// RouterState is everything a single routing node knows.
// It must only be accessed from the node's own dispatch goroutine.
type RouterState struct {
	Id    NodeId
	Links LinkCosts
	Table *DistanceTable
	// Adverts holds the latest minimum cost vector received from each neighbour,
	// used to re-derive table columns when a link cost changes
	Adverts map[NodeId][]Cost
}

func (s *RouterState) Initialized() bool {
	return s.Table != nil
}

func (s *RouterState) Inf() Cost {
	return s.Links.Inf
}

func (s *RouterState) Len() int {
	return s.Links.Len()
}

func (s *RouterState) IsNeighbour(id NodeId) bool {
	return s.Links.IsNeighbour(id)
}

package state

// ShortestPaths computes all pairs shortest path costs over a direct link matrix
// indexed [from][to] using Floyd-Warshall. Unreachable pairs are inf.
//
// A link i -> j is only usable when j also has a link back to i, since i only
// accepts advertisements from nodes it has a direct link to, and j only advertises
// to nodes it has a direct link to.
func ShortestPaths(links [][]Cost, inf Cost) [][]Cost {
	n := len(links)
	dist := make([][]Cost, n)
	for i := range links {
		dist[i] = make([]Cost, n)
		for j := range links[i] {
			dist[i][j] = inf
			if links[i][j] < inf && links[j][i] < inf {
				dist[i][j] = links[i][j]
			}
		}
		dist[i][i] = 0
	}
	for k := range n {
		for i := range n {
			for j := range n {
				if c := AddCost(dist[i][k], dist[k][j], inf); c < dist[i][j] {
					dist[i][j] = c
				}
			}
		}
	}
	return dist
}

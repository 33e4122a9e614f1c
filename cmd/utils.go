package cmd

import (
	"fmt"
	"strings"

	"github.com/encodeous/dvnet/state"
)

func loadTopology() *state.TopologyCfg {
	cfg, err := state.LoadTopology(topologyPath)
	if err != nil {
		panic(fmt.Errorf("failed to load topology %s: %w", topologyPath, err))
	}
	return cfg
}

// formatMatrix renders a square cost matrix, indexed [from][to]
func formatMatrix(m [][]state.Cost, inf state.Cost) string {
	sb := strings.Builder{}
	sb.WriteString("     |")
	for j := range m {
		sb.WriteString(fmt.Sprintf(" %5d", j))
	}
	sb.WriteString("\n-----|")
	sb.WriteString(strings.Repeat("-", 6*len(m)))
	sb.WriteString("\n")
	for i, row := range m {
		sb.WriteString(fmt.Sprintf("%4d |", i))
		for _, c := range row {
			if c >= inf {
				sb.WriteString(fmt.Sprintf(" %5s", "inf"))
			} else {
				sb.WriteString(fmt.Sprintf(" %5d", c))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

package cmd

import (
	"fmt"

	"github.com/encodeous/dvnet/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates the topology and prints it in expanded form",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadTopology()
		out, err := yaml.Marshal(cfg)
		if err != nil {
			panic(err)
		}
		fmt.Println("Topology is valid")
		fmt.Print(string(out))
		fmt.Println()
		fmt.Println("Shortest path costs:")
		fmt.Print(formatMatrix(state.ShortestPaths(cfg.LinkMatrix(), cfg.Infinity), cfg.Infinity))
	},
	GroupID: "topo",
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Prints the shortest path cost between every pair of nodes",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadTopology()
		fmt.Print(formatMatrix(state.ShortestPaths(cfg.LinkMatrix(), cfg.Infinity), cfg.Infinity))
	},
	GroupID: "topo",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(pathsCmd)
}

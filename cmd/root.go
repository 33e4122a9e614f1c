package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var topologyPath = "topology.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dvnet",
	Short: "Distance vector routing simulator",
	Long: `dvnet runs a distributed distance vector routing protocol over a simulated network.
Every node only knows the cost of its own links and learns everything else from its neighbours.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "topo",
		Title: "Topology Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "dv",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", topologyPath, "path to the topology file")
}

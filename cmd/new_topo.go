package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/dvnet/state"
	"github.com/spf13/cobra"
)

var forceWrite = false

var newTopoCmd = &cobra.Command{
	Use:   "new-topo",
	Short: "Writes the 4 node example topology",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(topologyPath); err == nil && !forceWrite {
			fmt.Printf("%s already exists, use --force to overwrite it\n", topologyPath)
			os.Exit(1)
		}
		cfg := state.ReferenceCfg()
		err := state.SaveTopology(topologyPath, &cfg)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Wrote topology to %s\n", topologyPath)
	},
	GroupID: "topo",
}

func init() {
	rootCmd.AddCommand(newTopoCmd)
	newTopoCmd.Flags().BoolVarP(&forceWrite, "force", "f", false, "overwrite an existing file")
}

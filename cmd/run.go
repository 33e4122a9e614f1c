package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/encodeous/dvnet/core"
	"github.com/encodeous/dvnet/state"
	"github.com/spf13/cobra"
)

var (
	runCheck  bool
	runTrace  bool
	runDebug  bool
	debugAddr = "localhost:6060"
	logPath   string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the routing protocol over the topology",
	Long: `Starts one router per node, waits until no update is in flight, then applies every scheduled link event.
The distance table of every node is printed after convergence and after each event.`,
	Run: func(cmd *cobra.Command, args []string) {
		if !runNetwork(cmd) {
			os.Exit(1)
		}
	},
	GroupID: "dv",
}

// runNetwork runs the simulation and reports whether every check passed.
// Everything it opens is released before it returns.
func runNetwork(cmd *cobra.Command) bool {
	cfg := loadTopology()

	level := slog.LevelInfo
	if ok, _ := cmd.Flags().GetBool("verbose"); ok {
		level = slog.LevelDebug
	}
	opts := core.LogOptions{
		Level:   level,
		Console: os.Stderr,
	}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		opts.File = f
	}

	if runDebug {
		go func() {
			err := http.ListenAndServe(debugAddr, nil)
			if err != nil {
				slog.Error("debug server stopped", "error", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	net := core.NewNetwork(cfg, opts)
	fmt.Printf("Run %s, %d nodes\n", net.RunId, cfg.Len())

	if runTrace {
		ch, unsub := net.Trace.Subscribe()
		done := make(chan struct{})
		defer func() {
			close(done)
			unsub()
		}()
		go func() {
			for {
				select {
				case ev := <-ch:
					if ev == nil {
						return
					}
					te := ev.(core.TableEvent)
					fmt.Printf("[trace] node %d %s %v\n", te.Node, te.Event, te.MinCost)
				case <-done:
					return
				}
			}
		}()
	}

	err := net.Start(ctx)
	if err != nil {
		panic(err)
	}
	defer func() {
		err := net.Stop()
		if err != nil && !errors.Is(err, core.ErrNetworkStopped) {
			slog.Error("failed to stop network", "error", err)
		}
	}()

	qctx, qcancel := context.WithTimeout(ctx, state.QuiescenceTimeout)
	err = net.WaitQuiescent(qctx)
	qcancel()
	if err != nil {
		panic(fmt.Errorf("network did not converge: %w", err))
	}
	fmt.Println("Converged")
	printTables(net)

	failed := false
	if runCheck {
		if err := net.Verify(); err != nil {
			fmt.Printf("Check failed:\n%s\n", err)
			failed = true
		} else {
			fmt.Println("Check passed")
		}
	}

	err = net.RunEvents(ctx, func(ev state.LinkEventCfg) error {
		fmt.Printf("\nLink %d <-> %d changed to %d\n", ev.A, ev.B, ev.Cost)
		printTables(net)
		if runCheck {
			// raised costs can leave stale routes behind, so this only warns
			if err := net.Verify(); err != nil {
				fmt.Printf("Check differs from shortest paths:\n%s\n", err)
			}
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("\n%d updates sent, %d delivered\n", net.Stats.Sent.Load(), net.Stats.Delivered.Load())
	return !failed
}

func printTables(net *core.Network) {
	for i := range net.Len() {
		table, err := net.Render(state.NodeId(i))
		if err != nil {
			panic(err)
		}
		fmt.Printf("\nNode %d\n", i)
		fmt.Print(strings.TrimRight(table, "\n"))
		fmt.Println()
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolVarP(&runCheck, "check", "c", false, "Compare converged costs with the shortest paths")
	runCmd.Flags().BoolVarP(&runTrace, "trace", "r", false, "Print every table update")
	runCmd.Flags().StringVarP(&logPath, "log", "l", "", "Also write logs to this file")
	runCmd.Flags().BoolVarP(&runDebug, "debug", "d", false, "Serve metrics over http")
	runCmd.Flags().StringVar(&debugAddr, "debug-addr", debugAddr, "Address of the metrics server")
}

// Command nornicvec turns short notes into dense on-device vectors, saves
// them to a local index, and answers nearest-neighbor recall queries with
// optional structured-metadata filtering.
//
// Usage:
//
//	nornicvec save [<id>] <note> [--meta <flow>]
//	nornicvec recall [-k N] [--filter <flow>] <query>
//	nornicvec clear
//
// Every subcommand accepts --config to point at a YAML settings file and
// --base to select which db/<base>.memo/.txt/.meta triple to operate on.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/orneryd/nornicvec/pkg/config"
	"github.com/orneryd/nornicvec/pkg/nvecerr"
	"github.com/orneryd/nornicvec/pkg/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dbBase     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nornicvec",
		Short:         "local semantic-memory engine: embed, save, and recall notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "nornicvec.yaml", "settings file")
	root.PersistentFlags().StringVar(&dbBase, "base", "notes", "db/<base>.memo|.txt|.meta name")

	root.AddCommand(newSaveCmd(), newRecallCmd(), newClearCmd())
	return root
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg, dbBase)
}

func newSaveCmd() *cobra.Command {
	var metaFlow string
	cmd := &cobra.Command{
		Use:   "save [<id>] <note>",
		Short: "embed a note and add it (or overwrite an existing row by id)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id *uint64
			note := args[0]
			if len(args) == 2 {
				parsed, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return nvecerr.User("save: parsing id", fmt.Errorf("%q is not a valid row id", args[0]))
				}
				id = &parsed
				note = args[1]
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			row, err := s.Save(id, note, metaFlow)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved row %d\n", row)
			return nil
		},
	}
	cmd.Flags().StringVar(&metaFlow, "meta", "", "metadata in flow syntax, e.g. 'topic: work'")
	return cmd
}

func newRecallCmd() *cobra.Command {
	var k int
	var filterExpr string
	cmd := &cobra.Command{
		Use:   "recall [-k N] [--filter <flow>] <query>",
		Short: "find the top-k nearest notes to query, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.Recall(args[0], k, filterExpr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%d\t%.4f\t%s\n", r.ID, r.Score, r.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 2, "number of results (clamped to [1, 100])")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "metadata filter in flow syntax")
	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "delete the index, text, and metadata files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Clear()
		},
	}
}

// exitCode implements spec.md §7's exit-code contract: 0 success (handled
// by cobra returning nil before this is ever reached), 1 for everything
// else. Fatal invariant violations get a distinguishing "fatal:" prefix on
// stderr rather than a separate exit code, since the CLI surface only
// specifies the two observable outcomes.
func exitCode(err error) int {
	var nerr *nvecerr.Error
	if errors.As(err, &nerr) && nerr.Kind == nvecerr.KindFatalInit {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/majorcontext/sluice/internal/audit"
	"github.com/majorcontext/sluice/internal/ui"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyVerify bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent model invocations",
	Long: `List recent model invocations from ~/.sluice/history.db.

Only metadata is kept: source, model, region, prompt and output lengths,
duration and outcome. Prompts and responses are never stored.

Examples:
  sluice history
  sluice history -n 50
  sluice history --verify`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "check the history's hash chain")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfg.Audit.Path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "No invocations recorded yet.")
		return nil
	}

	store, err := audit.OpenStore(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if historyVerify {
		if err := store.Verify(); err != nil {
			return err
		}
		n, err := store.Count()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s history intact: %d entries\n", ui.Green("ok"), n)
		return nil
	}

	entries, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invocations recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tID\tSOURCE\tMODEL\tREGION\tPROMPT\tOUTPUT\tDURATION\tRESULT")
	for _, e := range entries {
		inv := e.Invocation
		result := "ok"
		if !inv.OK {
			result = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			inv.ID, inv.Source, inv.ModelID, inv.Region,
			inv.PromptChars, inv.OutputChars,
			(time.Duration(inv.DurationMs) * time.Millisecond).String(),
			result)
	}
	return w.Flush()
}

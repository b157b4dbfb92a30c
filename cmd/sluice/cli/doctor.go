package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/majorcontext/sluice/internal/audit"
	"github.com/majorcontext/sluice/internal/doctor"
	"github.com/majorcontext/sluice/internal/ui"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnostic information about the sluice setup",
	Long: `Displays diagnostic information for debugging credential setups.

This command shows:
- sluice version and platform
- Effective configuration
- Which default-chain input the task role source will use
- Roles Anywhere settings, signing helper, certificate and key
- Invocation history status

Credential values are never printed. No AWS calls are made; use
'sluice whoami' to check that credentials actually resolve.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, ui.Bold("sluice doctor"))
	fmt.Fprintln(w)

	reg := doctor.NewRegistry()
	reg.Register(&versionSection{})
	reg.RegisterSources(cfg, configPath)
	reg.Register(&historySection{path: cfg.Audit.Path, enabled: cfg.Audit.Enabled})
	reg.Run(w)

	return nil
}

// versionSection shows platform and version info
type versionSection struct{}

func (s *versionSection) Name() string { return "Version" }

func (s *versionSection) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Version:\t%s\n", version)
	fmt.Fprintf(tw, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	return tw.Flush()
}

// historySection summarizes the invocation history database.
type historySection struct {
	path    string
	enabled bool
}

func (s *historySection) Name() string { return "Invocation History" }

func (s *historySection) Print(w io.Writer) error {
	if !s.enabled {
		fmt.Fprintln(w, "disabled")
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		fmt.Fprintln(w, "No invocations recorded yet.")
		return nil
	}

	store, err := audit.OpenStore(s.path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Entries:\t%d\n", n)
	if err := store.Verify(); err != nil {
		fmt.Fprintf(tw, "Chain:\t%s %v\n", ui.FailTag(), err)
	} else {
		fmt.Fprintf(tw, "Chain:\t%s intact\n", ui.OKTag())
	}
	return tw.Flush()
}

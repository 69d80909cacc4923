package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/audit"
	"github.com/illarion/vlt/internal/core"
)

const logDateFormat = "2006-01-02"

func newLogCmd(a *app) *cobra.Command {
	var (
		limit      int
		reverse    bool
		operations string
		since      string
		until      string
		failed     bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "log [name]",
		Short: "View the audit log",
		Long: `Displays the audit log of vault operations, oldest first.

Only changes are logged, and only while audit = true is set in the config.
Entry values and key material never appear in the log.

Examples:
  vlt log                           # View full log
  vlt log work                      # Only vault "work"
  vlt log -n 10 --reverse           # Last 10 entries, most recent first
  vlt log --operation add,new       # Filter by operation
  vlt log --since 2024-01-01        # Filter by date
  vlt log --json                    # JSON output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := audit.Filter{
				Limit:      limit,
				Reverse:    reverse,
				FailedOnly: failed,
			}
			if len(args) == 1 {
				f.Vault = args[0]
			}
			if operations != "" {
				for _, op := range strings.Split(operations, ",") {
					if op = strings.TrimSpace(op); op != "" {
						f.Operations = append(f.Operations, op)
					}
				}
			}

			var err error
			if f.Since, err = parseLogDate("since", since); err != nil {
				return err
			}
			if f.Until, err = parseLogDate("until", until); err != nil {
				return err
			}
			if !f.Until.IsZero() {
				// Include the whole --until day
				f.Until = f.Until.AddDate(0, 0, 1)
			}

			path := a.cfg.AuditPath()
			a.log.Debugf("audit log: %s", path)
			res, err := core.ReadAuditLog(cmd.Context(), path, f)
			if err != nil {
				return err
			}
			a.log.Debugf("%d of %d entries match", len(res.Events), res.Total)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeLogJSON(out, res.Events)
			}
			if len(res.Events) == 0 {
				if res.Total == 0 {
					fmt.Fprintln(out, "No audit log entries found.")
					if !a.cfg.Audit {
						a.log.Warnf("auditing is disabled; set audit = true in %s", a.configPath)
					}
				} else {
					fmt.Fprintln(out, "No audit log entries found matching the filters.")
				}
				return nil
			}
			writeLogTable(out, res.Events)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&limit, "number", "n", 0, "limit number of entries shown")
	flags.BoolVar(&reverse, "reverse", false, "show most recent entries first")
	flags.StringVar(&operations, "operation", "", "filter by operation (comma-separated)")
	flags.StringVar(&since, "since", "", "show entries on or after date (YYYY-MM-DD)")
	flags.StringVar(&until, "until", "", "show entries on or before date (YYYY-MM-DD)")
	flags.BoolVar(&failed, "failed", false, "show failed operations only")
	flags.BoolVar(&asJSON, "json", false, "output as JSON array")
	return cmd
}

func parseLogDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(logDateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q, expected YYYY-MM-DD", flag, value)
	}
	return t, nil
}

func writeLogJSON(w io.Writer, events []audit.Event) error {
	if events == nil {
		events = []audit.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeLogTable(w io.Writer, events []audit.Event) {
	for _, ev := range events {
		when := ev.Timestamp
		if ts, err := ev.Time(); err == nil {
			when = ts.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%-19s  %-14s  %-12s  %s\n", when, ev.Operation, ev.Vault, logDetails(ev))
	}
}

func logDetails(ev audit.Event) string {
	var parts []string
	if ev.Key != "" {
		parts = append(parts, "key="+ev.Key)
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("count=%d", ev.Count))
	}
	if !ev.Success {
		parts = append(parts, "FAILED: "+ev.Error)
	}
	return strings.Join(parts, " ")
}

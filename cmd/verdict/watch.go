package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Verdict/internal/hermes"
)

var watchSubject string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print matrix change events from NATS as they happen.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		if cfg.Hermes.URL == "" {
			return fmt.Errorf("hermes.url is not configured")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			return err
		}
		defer hc.Close()
		return watch(ctx, hc, watchSubject, cmd.OutOrStdout())
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSubject, "subject", hermes.SubjectMatrixAll, "subject to subscribe to")
}

func watch(ctx context.Context, c hermes.Client, subject string, w io.Writer) error {
	if err := c.Subscribe(subject, func(subj string, data []byte) {
		fmt.Fprintln(w, formatEvent(subj, data))
	}); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

var subjectColor = color.New(color.FgCyan)

// formatEvent renders one event line. Update events list the percentages.
func formatEvent(subject string, data []byte) string {
	var evt hermes.MatrixChangedEvent
	if err := json.Unmarshal(data, &evt); err != nil || evt.Change == "" {
		return fmt.Sprintf("%s %s", subjectColor.Sprint(subject), data)
	}
	line := fmt.Sprintf("%s rev=%d %s %v", subjectColor.Sprint(subject), evt.Revision, evt.Change, evt.Names)
	choices := make([]string, 0, len(evt.Percentages))
	for c := range evt.Percentages {
		choices = append(choices, c)
	}
	sort.Strings(choices)
	for _, choice := range choices {
		line += fmt.Sprintf(" %s=%.2f%%", choice, evt.Percentages[choice])
	}
	return line
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	rateSport string
	rateSince string
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Apply completed results that have not been rated yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		since, err := parseSince(rateSince, time.Now().UTC())
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sports, err := selectSports(a.sports, rateSport)
		if err != nil {
			return err
		}

		for _, sport := range sports {
			report, err := a.ratings.CatchUp(ctx, sport, since)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			for id, ferr := range report.Failures {
				appLog.WithField("match_id", id).WithError(ferr).Warn("Rating update failed")
			}
		}
		return nil
	},
}

func init() {
	rateCmd.Flags().StringVar(&rateSport, "sport", "", "Sport to rate (default: all configured sports)")
	rateCmd.Flags().StringVar(&rateSince, "since", "168h", "Lookback as a duration (72h) or an RFC 3339 date")
}

// parseSince accepts either a lookback duration or an absolute timestamp
func parseSince(value string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("lookback must be positive, got %s", value)
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q", value)
}

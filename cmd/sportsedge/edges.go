package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/sportsedge/internal/edge"
	"github.com/yourusername/sportsedge/internal/models"
)

var (
	edgesSport   string
	edgesDays    int
	edgesRefresh bool
)

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Compare stored predictions with the latest market odds",
	Long: `Scans upcoming matches, optionally refreshing odds first, and prints the
dominant edge of each match ordered by magnitude. Nothing is published.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sports, err := selectSports(a.sports, edgesSport)
		if err != nil {
			return err
		}

		if edgesRefresh {
			reports, err := a.odds.RefreshAll(ctx, sports)
			for _, r := range reports {
				appLog.WithField("sport", r.Sport).WithField("stored", r.Stored).Info("Odds refreshed")
			}
			if err != nil {
				appLog.WithError(err).Warn("Odds refresh incomplete")
			}
		}

		from := time.Now().UTC()
		to := from.Add(time.Duration(edgesDays) * 24 * time.Hour)

		var all []*models.Edge
		for _, sport := range sports {
			report, err := a.edges.Upcoming(ctx, sport, from, to)
			if err != nil {
				return err
			}
			for id, uerr := range report.Unavailable {
				appLog.WithField("match_id", id).WithError(uerr).Debug("Edge unavailable")
			}
			all = append(all, report.Edges...)
		}

		edge.Rank(all)
		return printEdges(cmd.OutOrStdout(), all)
	},
}

func init() {
	edgesCmd.Flags().StringVar(&edgesSport, "sport", "", "Sport to scan (default: all configured sports)")
	edgesCmd.Flags().IntVar(&edgesDays, "days", 3, "Scan horizon in days")
	edgesCmd.Flags().BoolVar(&edgesRefresh, "refresh", false, "Refresh market odds before scanning")
	edgesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one JSON object per line")
}

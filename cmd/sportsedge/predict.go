package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/sportsedge/internal/models"
)

var (
	predictSport string
	predictDays  int
	predictMatch string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict upcoming matches and store the results",
	Long: `Predicts every scheduled match of the selected sports kicking off within
--days, or a single match with --match. Stored predictions are overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if predictMatch != "" {
			id, err := uuid.Parse(predictMatch)
			if err != nil {
				return fmt.Errorf("invalid match id %q: %w", predictMatch, err)
			}
			pred, err := a.predictions.PredictMatchByID(ctx, id)
			if err != nil {
				return err
			}
			return printPredictions(cmd.OutOrStdout(), []*models.Prediction{pred})
		}

		sports, err := selectSports(a.sports, predictSport)
		if err != nil {
			return err
		}

		from := time.Now().UTC()
		to := from.Add(time.Duration(predictDays) * 24 * time.Hour)

		var all []*models.Prediction
		for _, sport := range sports {
			report, err := a.predictions.GenerateBatch(ctx, sport, from, to)
			if err != nil {
				return err
			}
			appLog.Info(report.String())
			for id, ferr := range report.Failures {
				appLog.WithField("match_id", id).WithError(ferr).Warn("Prediction failed")
			}
			all = append(all, report.Predictions...)
		}

		sort.Slice(all, func(i, j int) bool {
			return all[i].MatchID.String() < all[j].MatchID.String()
		})
		return printPredictions(cmd.OutOrStdout(), all)
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictSport, "sport", "", "Sport to predict (default: all configured sports)")
	predictCmd.Flags().IntVar(&predictDays, "days", 3, "Prediction horizon in days")
	predictCmd.Flags().StringVar(&predictMatch, "match", "", "Predict a single match by id")
	predictCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one JSON object per line")
	predictCmd.MarkFlagsMutuallyExclusive("match", "sport")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/sportsedge/internal/repository"
	"github.com/yourusername/sportsedge/internal/seed"
)

var (
	seedFile   string
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load teams and fixtures from a YAML seed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}

		var repos *repository.Repositories
		if seedDryRun {
			repos = repository.NewMemoryRepositories()
		} else {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			repos = a.repos
		}

		report, err := seed.NewSeeder(repos.Team, repos.Match, appLog).Apply(ctx, file)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "teams created: %d, existing: %d, matches: %d\n",
			report.TeamsCreated, report.TeamsExisting, report.Matches)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "config/seed.yaml", "Seed file path")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Validate the file against an in-memory store only")
}

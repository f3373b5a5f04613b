package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yourusername/sportsedge/internal/models"
)

var jsonOutput bool

func writeJSONLines[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func printPredictions(w io.Writer, preds []*models.Prediction) error {
	if jsonOutput {
		return writeJSONLines(w, preds)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tSPORT\tHOME\tDRAW\tAWAY\tCONFIDENCE")
	for _, p := range preds {
		draw := "-"
		if d, ok := p.Draw(); ok {
			draw = fmt.Sprintf("%.3f", d)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%.3f\t%.3f\n",
			p.MatchID, p.Sport, p.HomeWin(), draw, p.AwayWin(), p.Confidence)
	}
	return tw.Flush()
}

func printEdges(w io.Writer, edges []*models.Edge) error {
	if jsonOutput {
		return writeJSONLines(w, edges)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tOUTCOME\tMODEL\tMARKET\tEDGE\tEV\tKELLY\tSEVERITY\tBOOKMAKER")
	for _, e := range edges {
		d := e.Dominant
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%+.3f\t%+.3f\t%.3f\t%s\t%s\n",
			e.MatchID, d.Outcome, d.ModelProbability, d.ImpliedProbability,
			d.Edge, d.ExpectedValue, d.KellyFraction, d.Severity, e.Odds.Bookmaker)
	}
	return tw.Flush()
}

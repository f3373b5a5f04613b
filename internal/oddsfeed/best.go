package oddsfeed

import (
	"strings"

	"github.com/shopspring/decimal"
)

// sharpBooks are tried in order before falling back to the lowest overround
var sharpBooks = []string{"pinnacle", "betfair_ex_eu", "betfair_ex_uk", "williamhill", "bet365"}

var one = decimal.NewFromInt(1)

// Quote is the selected price set for one event
type Quote struct {
	Bookmaker string
	Home      decimal.Decimal
	Away      decimal.Decimal
	Draw      *decimal.Decimal
}

// Overround returns the summed implied probability of the quote
func (q Quote) Overround() decimal.Decimal {
	sum := one.Div(q.Home).Add(one.Div(q.Away))
	if q.Draw != nil {
		sum = sum.Add(one.Div(*q.Draw))
	}
	return sum
}

// Floats converts the quote to float64 prices for the edge detector
func (q Quote) Floats() (home, away float64, draw *float64) {
	home, _ = q.Home.Float64()
	away, _ = q.Away.Float64()
	if q.Draw != nil {
		d, _ := q.Draw.Float64()
		draw = &d
	}
	return home, away, draw
}

// BestQuote picks the first sharp bookmaker with a complete h2h market, then
// falls back to the book with the lowest overround. Prices at or below 1.0
// disqualify a bookmaker.
func BestQuote(event Event) (Quote, bool) {
	quotes := make(map[string]Quote, len(event.Bookmakers))
	var order []string
	for _, bk := range event.Bookmakers {
		if q, ok := extract(event, bk); ok {
			quotes[bk.Key] = q
			order = append(order, bk.Key)
		}
	}

	for _, key := range sharpBooks {
		if q, ok := quotes[key]; ok {
			return q, true
		}
	}

	var best Quote
	found := false
	for _, key := range order {
		q := quotes[key]
		if !found || q.Overround().LessThan(best.Overround()) {
			best, found = q, true
		}
	}
	return best, found
}

func extract(event Event, bk Bookmaker) (Quote, bool) {
	for _, m := range bk.Markets {
		if m.Key != "h2h" {
			continue
		}

		q := Quote{Bookmaker: bk.Title}
		var haveHome, haveAway bool
		for _, o := range m.Outcomes {
			switch {
			case strings.EqualFold(o.Name, "draw"):
				p := o.Price
				q.Draw = &p
			case NamesMatch(o.Name, event.HomeTeam):
				q.Home, haveHome = o.Price, true
			case NamesMatch(o.Name, event.AwayTeam):
				q.Away, haveAway = o.Price, true
			}
		}
		if !haveHome || !haveAway || !q.Home.GreaterThan(one) || !q.Away.GreaterThan(one) {
			return Quote{}, false
		}
		if q.Draw != nil && !q.Draw.GreaterThan(one) {
			q.Draw = nil
		}
		if q.Bookmaker == "" {
			q.Bookmaker = bk.Key
		}
		return q, true
	}
	return Quote{}, false
}

var nameReplacer = strings.NewReplacer(".", "", "-", " ")

func normalizeName(s string) string {
	s = nameReplacer.Replace(strings.ToLower(s))
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		switch f {
		case "fc", "afc", "sc":
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// NamesMatch compares team names after dropping club suffixes and punctuation.
// Either name containing the other counts as a match.
func NamesMatch(a, b string) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

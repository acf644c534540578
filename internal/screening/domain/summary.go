package domain

import "fmt"

// Summarize renders the one-line human summary shown to operators.
func Summarize(q EntityQuery, sanctions SanctionsOutcome, search SearchOutcome) string {
	name := q.DisplayName()
	records := sanctions.RecordCount()
	hits := search.HitCount()

	switch {
	case sanctions.IsMatch() && hits > 0:
		return fmt.Sprintf("%s found in sanctions database (%d records) and web search (%d results)", name, records, hits)
	case sanctions.IsMatch():
		return fmt.Sprintf("%s found in sanctions database (%d records)", name, records)
	case hits > 0:
		return fmt.Sprintf("%s found in web search (%d results) but not in sanctions database", name, hits)
	case sanctions.Failure != nil && search.Failure != nil:
		return fmt.Sprintf("%s could not be checked: both providers unavailable", name)
	default:
		return fmt.Sprintf("%s not found in any database", name)
	}
}

// Package aggregate computes summary statistics over a set of test results.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// Summary is the aggregate view of one run. Optional statistics are
// pointer-typed so absent data is omitted from JSON instead of showing up
// as a misleading zero.
type Summary struct {
	Total    int      `json:"total"`
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	PassRate *float64 `json:"pass_rate,omitempty"`

	Criteria []CriterionStats `json:"criteria,omitempty"`

	MeanExecutionTime *float64 `json:"mean_execution_time_seconds,omitempty"`
	TotalCost         *float64 `json:"total_cost,omitempty"`
}

// CriterionStats tallies one criterion across all tests that used it.
type CriterionStats struct {
	CriteriaID string `json:"criteria_id"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Unknown    int    `json:"unknown"`
}

// Summarize computes the summary for a result set. Pass rate is rounded to
// two decimal places; cost is only reported when at least one provider
// returned one.
func Summarize(results []*testsuite.TestResult) Summary {
	s := Summary{Total: len(results)}
	if len(results) == 0 {
		return s
	}

	byID := map[string]*CriterionStats{}
	var elapsed time.Duration
	var cost float64
	costSeen := false

	for _, r := range results {
		if r.Success {
			s.Passed++
		} else {
			s.Failed++
		}
		elapsed += r.ExecutionTime

		if r.ProviderCost != nil {
			cost += *r.ProviderCost
			costSeen = true
		}

		for id, eval := range r.EvaluationResults {
			stats := byID[id]
			if stats == nil {
				stats = &CriterionStats{CriteriaID: id}
				byID[id] = stats
			}
			switch eval.Result {
			case testsuite.OutcomeSuccess:
				stats.Passed++
			case testsuite.OutcomeFailure:
				stats.Failed++
			default:
				stats.Unknown++
			}
		}
	}

	rate := math.Round(float64(s.Passed)/float64(s.Total)*10000) / 100
	s.PassRate = &rate

	mean := elapsed.Seconds() / float64(s.Total)
	s.MeanExecutionTime = &mean

	if costSeen {
		s.TotalCost = &cost
	}

	for _, stats := range byID {
		s.Criteria = append(s.Criteria, *stats)
	}
	sort.Slice(s.Criteria, func(i, j int) bool {
		return s.Criteria[i].CriteriaID < s.Criteria[j].CriteriaID
	})

	return s
}

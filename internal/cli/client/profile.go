package client

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SolutionCounts fetches the submission history of every problem in
// parallel and returns the number of submissions per problem UUID once all
// fetches have completed. A failed fetch counts as zero; an authorization
// failure aborts the whole join.
func (c *Client) SolutionCounts(ctx context.Context, problems []Problem) (map[string]int, error) {
	counts := make(map[string]int, len(problems))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)

	for _, p := range problems {
		g.Go(func() error {
			history, err := c.GetSolutionHistory(gctx, p.UUID)
			if errors.Is(err, ErrAuthRequired) {
				return err
			}

			n := 0
			if err != nil {
				c.logger.Warn().Err(err).Str("problem_uuid", p.UUID).Msg("Failed to fetch solutions")
			} else {
				n = len(history.Solutions)
			}

			mu.Lock()
			counts[p.UUID] = n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ProfileStats summarizes a profile's problem list
type ProfileStats struct {
	Total              int
	Solved             int
	SolvedPercentage   float64
	TotalByDifficulty  DifficultyCounts
	SolvedByDifficulty DifficultyCounts
}

// ComputeStats derives totals and per-difficulty counts from a profile
func ComputeStats(p *Profile) ProfileStats {
	stats := ProfileStats{
		Total:              len(p.Problems),
		SolvedByDifficulty: p.ProblemsByDifficulty,
	}

	for _, problem := range p.Problems {
		if problem.Solved {
			stats.Solved++
		}
		switch problem.Difficulty {
		case "easy":
			stats.TotalByDifficulty.Easy++
		case "medium":
			stats.TotalByDifficulty.Medium++
		case "hard":
			stats.TotalByDifficulty.Hard++
		}
	}

	if stats.Total > 0 {
		stats.SolvedPercentage = float64(stats.Solved) / float64(stats.Total) * 100
	}

	return stats
}

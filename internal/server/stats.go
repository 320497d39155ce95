package server

import (
	"database/sql"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/algohub-dev/algohub/internal/models"
)

// streaks returns the current and longest runs of consecutive UTC days with
// at least one accepted solution. The current run stays alive until a full
// day passes without one.
func streaks(accepted []time.Time, now time.Time) (current, longest int) {
	if len(accepted) == 0 {
		return 0, 0
	}

	seen := make(map[time.Time]bool, len(accepted))
	days := make([]time.Time, 0, len(accepted))
	for _, t := range accepted {
		d := t.UTC().Truncate(24 * time.Hour)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	last := days[len(days)-1]
	if last.Equal(today) || last.Equal(today.Add(-24*time.Hour)) {
		current = run
	}
	return current, longest
}

// successRate is the share of accepted submissions as a percentage
func successRate(accepted, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(accepted) / float64(total) * 100
}

// compareSolution ranks a solution against other users' accepted solutions
// of the same problem in the same language. Without others to compare with,
// the averages are the solution's own metrics.
func compareSolution(db *gorm.DB, sol *models.Solution) (ResultDetails, error) {
	details := ResultDetails{
		AverageTimeMS:   sol.ExecutionTimeMS,
		AverageMemoryKB: sol.MemoryUsageKB,
	}

	others := db.Model(&models.Solution{}).
		Where("problem_uuid = ? AND status = ? AND user_id <> ? AND language = ?",
			sol.ProblemUUID, models.SolutionAccepted, sol.UserID, sol.Language).
		Session(&gorm.Session{})

	var avgTime, avgMemory sql.NullFloat64
	var total int64
	row := others.Select("AVG(execution_time_ms), AVG(memory_usage_kb), COUNT(*)").Row()
	if err := row.Scan(&avgTime, &avgMemory, &total); err != nil {
		return details, err
	}

	details.AvgOtherTimeMS = sol.ExecutionTimeMS
	if avgTime.Valid {
		details.AvgOtherTimeMS = avgTime.Float64
	}
	details.AvgOtherMemoryKB = int64(sol.MemoryUsageKB)
	if avgMemory.Valid {
		details.AvgOtherMemoryKB = int64(avgMemory.Float64)
	}

	if total == 0 {
		return details, nil
	}

	var slower, heavier int64
	if err := others.Where("execution_time_ms > ?", sol.ExecutionTimeMS).Count(&slower).Error; err != nil {
		return details, err
	}
	if err := others.Where("memory_usage_kb > ?", sol.MemoryUsageKB).Count(&heavier).Error; err != nil {
		return details, err
	}

	details.TimeBeatPercent = float64(slower) / float64(total) * 100
	details.MemoryBeatPercent = float64(heavier) / float64(total) * 100
	return details, nil
}

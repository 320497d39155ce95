package server

import (
	"context"

	"github.com/algohub-dev/algohub/internal/models"
)

// Submission is the code to judge against a problem's test cases
type Submission struct {
	ProblemUUID string
	Language    string
	Code        string
	TestCases   []models.TestCase
}

// Verdict is the outcome of running a submission. Failure is set to
// MessageCompilationFailed or MessageExecutionFailed when the program could
// not be run to completion; FailedTests lists wrong answers otherwise.
type Verdict struct {
	Failure      string
	ErrorDetails string
	FailedTests  []TestCaseResult
	TimeMS       float64
	MemoryKB     float64
}

// Passed reports whether every test case produced the expected output
func (v *Verdict) Passed() bool {
	return v.Failure == "" && len(v.FailedTests) == 0
}

// Judge runs submissions. The development backend never executes code;
// a real grader can be plugged in with WithJudge.
type Judge interface {
	Judge(ctx context.Context, sub Submission) (*Verdict, error)
}

// RecordingJudge accepts every submission without running it
type RecordingJudge struct{}

// Judge implements Judge
func (RecordingJudge) Judge(ctx context.Context, sub Submission) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Verdict{}, nil
}

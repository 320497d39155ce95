package server

import "time"

// Judge outcome messages
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	MessageCompilationFailed = "Code compilation failed"
	MessageExecutionFailed   = "Code execution failed"
	MessageTestCasesFailed   = "Test cases failed"
	MessageAllPassed         = "All test cases passed!"
)

// ProblemResponse is a problem with the caller's progress
type ProblemResponse struct {
	ID          int              `json:"id"`
	UUID        string           `json:"uuid"`
	Name        string           `json:"name"`
	Difficulty  string           `json:"difficulty"`
	Description string           `json:"description"`
	Solved      bool             `json:"solved"`
	Solution    *ProblemSolution `json:"solution,omitempty"`
}

// ResultDetails holds the metrics of a solution compared with other users'
type ResultDetails struct {
	AverageTimeMS     float64 `json:"average_time_ms"`
	AverageMemoryKB   float64 `json:"average_memory_kb"`
	AvgOtherTimeMS    float64 `json:"avg_other_time_ms"`
	AvgOtherMemoryKB  int64   `json:"avg_other_memory_kb"`
	TimeBeatPercent   float64 `json:"time_beat_percent"`
	MemoryBeatPercent float64 `json:"memory_beat_percent"`
}

// ProblemSolution is one stored submission
type ProblemSolution struct {
	ResultDetails
	CreatedAt time.Time `json:"created_at"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
	Status    string    `json:"status"`
}

// SolutionRequest is the submission body
type SolutionRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language" validate:"required,language"`
}

// TestCaseResult is a failed test case with the program's actual output
type TestCaseResult struct {
	ID           int    `json:"id"`
	Input        string `json:"input"`
	Output       string `json:"output"`
	ActualOutput string `json:"actual_output,omitempty"`
}

// SubmitResult is the verdict returned for a submission
type SubmitResult struct {
	Status       string           `json:"status"`
	Message      string           `json:"message"`
	ErrorDetails string           `json:"error_details,omitempty"`
	FailedTests  []TestCaseResult `json:"failed_tests,omitempty"`
	Details      *ResultDetails   `json:"details,omitempty"`
}

// DifficultyCounts counts solved problems per difficulty
type DifficultyCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// ProfileResponse is the caller's profile and statistics
type ProfileResponse struct {
	UserID               string            `json:"userID"`
	Username             string            `json:"username"`
	Role                 string            `json:"role"`
	Streak               int               `json:"streak"`
	LongestStreak        int               `json:"longestStreak"`
	SuccessRate          float64           `json:"successRate"`
	Problems             []ProblemResponse `json:"problems"`
	ProblemsByDifficulty DifficultyCounts  `json:"problemsByDifficulty"`
}

// CreateProblemRequest is the admin problem creation body
type CreateProblemRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Difficulty  string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Description string `json:"description"`
}

// CreateTestCaseRequest is the admin test case creation body
type CreateTestCaseRequest struct {
	Input  string `json:"input"`
	Output string `json:"output" validate:"required"`
}

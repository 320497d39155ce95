package client

import "time"

// Submission statuses and failure kinds reported by the judge
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	CompilationFailed = "Code compilation failed"
	ExecutionFailed   = "Code execution failed"

	// SolutionAccepted is the stored status of a solution that passed every test
	SolutionAccepted = "accepted"
)

// Credentials is the login and signup request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the generic acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
	UUID    string `json:"uuid,omitempty"`
}

// Problem represents a coding problem
type Problem struct {
	ID          int              `json:"id"`
	UUID        string           `json:"uuid"`
	Name        string           `json:"name"`
	Difficulty  string           `json:"difficulty"`
	Description string           `json:"description"`
	Solved      bool             `json:"solved"`
	Solution    *ProblemSolution `json:"solution,omitempty"`
}

// ResultDetails holds performance metrics of an accepted solution
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
	Code     string `json:"code"`
	Language string `json:"language"`
}

// TestCase is one input/output pair of a problem
type TestCase struct {
	ID     int    `json:"id"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// TestCaseResult is a failed test case with the program's actual output
type TestCaseResult struct {
	TestCase
	ActualOutput string `json:"actual_output,omitempty"`
}

// SubmitResult is the judge's verdict. A failed verdict is data, not an error.
type SubmitResult struct {
	Status       string           `json:"status"`
	Message      string           `json:"message"`
	ErrorDetails string           `json:"error_details,omitempty"`
	FailedTests  []TestCaseResult `json:"failed_tests,omitempty"`
	Details      *ResultDetails   `json:"details,omitempty"`
}

// Accepted reports whether every test passed
func (r *SubmitResult) Accepted() bool {
	return r.Status == StatusSuccess
}

// DifficultyCounts counts problems per difficulty
type DifficultyCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Profile is the current user's profile and statistics
type Profile struct {
	UserID               string           `json:"userID"`
	Username             string           `json:"username"`
	Role                 string           `json:"role"`
	Streak               int              `json:"streak"`
	LongestStreak        int              `json:"longestStreak"`
	SuccessRate          float64          `json:"successRate"`
	Problems             []Problem        `json:"problems"`
	ProblemsByDifficulty DifficultyCounts `json:"problemsByDifficulty"`
}

// SolutionHistory lists submissions, newest first
type SolutionHistory struct {
	Solutions []ProblemSolution `json:"solutions"`
}

// Dashboard is the admin overview
type Dashboard struct {
	Message   string `json:"message"`
	Users     int64  `json:"users"`
	Problems  int64  `json:"problems"`
	Solutions int64  `json:"solutions"`
}

// CreateProblemRequest is the admin problem creation body
type CreateProblemRequest struct {
	Name        string `json:"name"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
}

// CreateTestCaseRequest is the admin test case creation body
type CreateTestCaseRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

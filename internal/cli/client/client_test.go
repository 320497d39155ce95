package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type signalRecorder struct {
	mu      sync.Mutex
	signals []Signal
}

func (r *signalRecorder) record(s Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, s)
}

func (r *signalRecorder) all() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Signal(nil), r.signals...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *signalRecorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec := &signalRecorder{}
	base := []Option{
		WithForcedLogout(rec.record),
		WithTokenSource(staticToken("tok-1")),
		WithLogger(zerolog.Nop()),
	}
	return New(server.URL+"/api", append(base, opts...)...), rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRequest_SendsHeadersAndDecodes(t *testing.T) {
	var gotAuth, gotContentType, gotAccept, gotPath string
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, []Problem{{ID: 1, UUID: "p-1", Name: "Two Sum", Difficulty: "easy"}})
	})

	problems, err := c.GetProblems(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "Two Sum", problems[0].Name)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "/api/problems", gotPath)
	assert.Empty(t, rec.all())
}

func TestRequest_NoTokenNoAuthorizationHeader(t *testing.T) {
	var hasAuth bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, []Problem{})
	}, WithTokenSource(staticToken("")))

	_, err := c.GetProblems(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestRequest_SendsJarCookies(t *testing.T) {
	var sessionCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session"); err == nil {
			sessionCookie = ck.Value
		}
		writeJSON(w, http.StatusOK, []Problem{})
	}))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "sess-42", Path: "/"}})

	c := New(server.URL+"/api", WithCookieJar(jar), WithLogger(zerolog.Nop()))
	_, err = c.GetProblems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sess-42", sessionCookie)
}

func TestRequest_AuthFailureRaisesOneSignal(t *testing.T) {
	messages := []string{
		"Not authorized",
		"not authorized: session expired",
		"NOT AUTHORIZED: token revoked",
		"Unauthorized",
	}

	for _, msg := range messages {
		t.Run(msg, func(t *testing.T) {
			c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{Error: msg})
			})

			_, err := c.GetProblems(context.Background())
			require.ErrorIs(t, err, ErrAuthRequired)
			// Returned unwrapped so callers do not report it twice
			assert.Same(t, ErrAuthRequired, err)

			signals := rec.all()
			require.Len(t, signals, 1)
			assert.Equal(t, msg, signals[0].Message)
			assert.True(t, signals[0].Forced)
			assert.Equal(t, "tok-1", signals[0].Token)
		})
	}
}

func TestRequest_AuthPatternMatchedInAnyStatus(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": map[string]any{"code": "X", "message": "Not authorized"}})
	})

	_, err := c.GetProfile(context.Background())
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Len(t, rec.all(), 1)
}

func TestRequest_UnrelatedErrorNoSignal(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, ErrorEnvelope{Error: "Admin access required"})
	})

	_, err := c.GetDashboard(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, "failed to load dashboard: Admin access required", err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Empty(t, rec.all())
}

func TestRequest_PlainTextServerError(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	})

	_, err := c.GetProblem(context.Background(), "p-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal Server Error", apiErr.Message)
	assert.Equal(t, "Internal Server Error", ErrorMessage(apiErr))
	assert.Empty(t, rec.all())
}

func TestRequest_Plain401WithoutMatchingTextIsNotForced(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetProblems(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, "failed to load problems: request failed with status code 401", err.Error())
	assert.Empty(t, rec.all())
}

func TestRequest_SkipAuthCheck(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{Error: "Invalid username or password"})
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", err.Error())
	assert.Empty(t, rec.all())
}

func TestRequest_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	rec := &signalRecorder{}
	c := New(addr+"/api", WithForcedLogout(rec.record), WithLogger(zerolog.Nop()))

	_, err := c.GetProblems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load problems: failed to send request")
	assert.Empty(t, rec.all())
}

func TestRequest_CustomAuthPatterns(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{Error: "Token Expired"})
	}, WithAuthPatterns("Token Expired"))

	_, err := c.GetProblems(context.Background())
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Len(t, rec.all(), 1)
}

func TestRequest_Timeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, []Problem{})
	}, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))

	_, err := c.GetProblems(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthRequired)
}

func TestLogin(t *testing.T) {
	var got Credentials
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, AuthResponse{Token: "jwt-token"})
	})

	resp, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, Credentials{Username: "alice", Password: "secret"}, got)
}

func TestLogin_EmptyToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	_, err := c.Login(context.Background(), "alice", "secret")
	assert.EqualError(t, err, "login response did not include a token")
}

func TestSignup_ExistingUser(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Error: "User already exists"})
	})

	_, err := c.Signup(context.Background(), "alice", "secret")
	assert.EqualError(t, err, "User already exists")
	assert.Empty(t, rec.all())
}

func TestVerifyToken_UsesGivenToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/profile", r.URL.Path)
		writeJSON(w, http.StatusOK, Profile{Username: "alice"})
	})

	require.NoError(t, c.VerifyToken(context.Background(), "other-token"))
	assert.Equal(t, "Bearer other-token", gotAuth)
}

func TestSubmitSolution(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req SolutionRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "python", req.Language)
			writeJSON(w, http.StatusOK, SubmitResult{
				Status:  StatusSuccess,
				Message: "All test cases passed",
				Details: &ResultDetails{AverageTimeMS: 12.5, TimeBeatPercent: 80},
			})
		})

		result, err := c.SubmitSolution(context.Background(), "p-1", SolutionRequest{Code: "print(1)", Language: "python"})
		require.NoError(t, err)
		assert.True(t, result.Accepted())
		require.NotNil(t, result.Details)
		assert.InDelta(t, 12.5, result.Details.AverageTimeMS, 0.001)
	})

	t.Run("verdict on bad request", func(t *testing.T) {
		c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, SubmitResult{
				Status:       StatusFailed,
				Message:      CompilationFailed,
				ErrorDetails: "SyntaxError: invalid syntax",
			})
		})

		result, err := c.SubmitSolution(context.Background(), "p-1", SolutionRequest{Code: "print(", Language: "python"})
		require.NoError(t, err)
		assert.False(t, result.Accepted())
		assert.Equal(t, CompilationFailed, result.Message)
		assert.Equal(t, "SyntaxError: invalid syntax", result.ErrorDetails)
		assert.Empty(t, rec.all())
	})

	t.Run("plain error", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Error: "Unsupported language"})
		})

		_, err := c.SubmitSolution(context.Background(), "p-1", SolutionRequest{Code: "x", Language: "cobol"})
		assert.EqualError(t, err, "failed to submit solution: Unsupported language")
	})
}

func TestGetSolutionHistory_Query(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("problem_uuid")
		writeJSON(w, http.StatusOK, SolutionHistory{Solutions: []ProblemSolution{{Status: StatusSuccess}}})
	})

	history, err := c.GetSolutionHistory(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, "p-9", gotQuery)
	assert.Len(t, history.Solutions, 1)
}

func TestAdminEndpoints(t *testing.T) {
	var calls []string
	var mu sync.Mutex
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/problem/p-1/testcases":
			writeJSON(w, http.StatusOK, []TestCase{{ID: 3, Input: "1", Output: "2"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/admin/problem":
			writeJSON(w, http.StatusCreated, MessageResponse{Message: "Problem created", UUID: "p-2"})
		default:
			writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
		}
	})

	ctx := context.Background()
	created, err := c.CreateProblem(ctx, CreateProblemRequest{Name: "Sum", Difficulty: "easy", Description: "Add"})
	require.NoError(t, err)
	assert.Equal(t, "p-2", created.UUID)

	cases, err := c.GetTestCases(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, 3, cases[0].ID)

	_, err = c.AddTestCase(ctx, "p-1", CreateTestCaseRequest{Input: "1", Output: "2"})
	require.NoError(t, err)
	_, err = c.DeleteTestCase(ctx, 3)
	require.NoError(t, err)
	_, err = c.DeleteProblem(ctx, "p-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/admin/problem",
		"GET /api/admin/problem/p-1/testcases",
		"POST /api/admin/problem/p-1/testcase",
		"DELETE /api/admin/testcase/3",
		"DELETE /api/admin/problem/p-1",
	}, calls)
}

func TestSolutionCounts(t *testing.T) {
	var inFlight, peak atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)

		switch r.URL.Query().Get("problem_uuid") {
		case "p-fail":
			writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: "database error"})
		case "p-2":
			writeJSON(w, http.StatusOK, SolutionHistory{Solutions: make([]ProblemSolution, 2)})
		default:
			writeJSON(w, http.StatusOK, SolutionHistory{Solutions: make([]ProblemSolution, 1)})
		}
	}, WithParallelism(2))

	problems := []Problem{{UUID: "p-1"}, {UUID: "p-2"}, {UUID: "p-fail"}, {UUID: "p-4"}}
	counts, err := c.SolutionCounts(context.Background(), problems)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"p-1": 1, "p-2": 2, "p-fail": 0, "p-4": 1}, counts)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSolutionCounts_AuthFailureAborts(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{Error: "Not authorized: session expired"})
	}, WithParallelism(1))

	problems := make([]Problem, 5)
	for i := range problems {
		problems[i].UUID = fmt.Sprintf("p-%d", i)
	}

	counts, err := c.SolutionCounts(context.Background(), problems)
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Nil(t, counts)
	assert.NotEmpty(t, rec.all())
}

func TestComputeStats(t *testing.T) {
	p := &Profile{
		Problems: []Problem{
			{Difficulty: "easy", Solved: true},
			{Difficulty: "easy"},
			{Difficulty: "medium", Solved: true},
			{Difficulty: "hard"},
		},
		ProblemsByDifficulty: DifficultyCounts{Easy: 1, Medium: 1},
	}

	stats := ComputeStats(p)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Solved)
	assert.InDelta(t, 50.0, stats.SolvedPercentage, 0.001)
	assert.Equal(t, DifficultyCounts{Easy: 2, Medium: 1, Hard: 1}, stats.TotalByDifficulty)
	assert.Equal(t, DifficultyCounts{Easy: 1, Medium: 1}, stats.SolvedByDifficulty)

	empty := ComputeStats(&Profile{})
	assert.Zero(t, empty.SolvedPercentage)
}

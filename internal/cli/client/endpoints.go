package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// wrap prefixes err with the failed operation. ErrAuthRequired passes
// through untouched so it is reported once, by the forced-logout path.
func wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrAuthRequired) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Login authenticates the user and returns a bearer token.
// Backend messages such as "Invalid username or password" are returned verbatim.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.Request(ctx, "/auth/login", RequestOptions{
		Method:        http.MethodPost,
		Body:          Credentials{Username: username, Password: password},
		SkipAuthCheck: true,
	}, "", &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}
	return &resp, nil
}

// Signup registers a new account. Messages such as "User already exists"
// are returned verbatim.
func (c *Client) Signup(ctx context.Context, username, password string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Request(ctx, "/auth/signup", RequestOptions{
		Method:        http.MethodPost,
		Body:          Credentials{Username: username, Password: password},
		SkipAuthCheck: true,
	}, "", &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProblems lists all problems with the caller's solved flags
func (c *Client) GetProblems(ctx context.Context) ([]Problem, error) {
	var problems []Problem
	if err := c.Request(ctx, "/problems", RequestOptions{}, c.token(), &problems); err != nil {
		return nil, wrap("load problems", err)
	}
	return problems, nil
}

// GetProblem returns one problem, including the caller's solution when solved
func (c *Client) GetProblem(ctx context.Context, id string) (*Problem, error) {
	var problem Problem
	if err := c.Request(ctx, "/problem/"+url.PathEscape(id), RequestOptions{}, c.token(), &problem); err != nil {
		return nil, wrap("load problem", err)
	}
	return &problem, nil
}

// SubmitSolution sends code for judging. A verdict delivered with a non-2xx
// status (compilation or execution failure) is returned as data.
func (c *Client) SubmitSolution(ctx context.Context, id string, req SolutionRequest) (*SubmitResult, error) {
	var result SubmitResult
	err := c.Request(ctx, "/problem/"+url.PathEscape(id), RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, c.token(), &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			var verdict SubmitResult
			if json.Unmarshal(apiErr.Body, &verdict) == nil && verdict.Status != "" {
				return &verdict, nil
			}
		}
		return nil, wrap("submit solution", err)
	}
	return &result, nil
}

// GetDashboard returns the admin overview
func (c *Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard Dashboard
	if err := c.Request(ctx, "/admin/dashboard", RequestOptions{}, c.token(), &dashboard); err != nil {
		return nil, wrap("load dashboard", err)
	}
	return &dashboard, nil
}

// GetProfile returns the current user's profile and statistics
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	return c.getProfile(ctx, c.token())
}

// VerifyToken checks token against the profile endpoint
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	_, err := c.getProfile(ctx, token)
	return err
}

func (c *Client) getProfile(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.Request(ctx, "/profile", RequestOptions{}, token, &profile); err != nil {
		return nil, wrap("load profile", err)
	}
	return &profile, nil
}

// GetSolutionHistory lists the caller's submissions, optionally for one problem
func (c *Client) GetSolutionHistory(ctx context.Context, problemUUID string) (*SolutionHistory, error) {
	opts := RequestOptions{}
	if problemUUID != "" {
		opts.Query = url.Values{"problem_uuid": []string{problemUUID}}
	}

	var history SolutionHistory
	if err := c.Request(ctx, "/solutions", opts, c.token(), &history); err != nil {
		return nil, wrap("load solution history", err)
	}
	return &history, nil
}

// CreateProblem adds a problem and returns its UUID in the response
func (c *Client) CreateProblem(ctx context.Context, req CreateProblemRequest) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Request(ctx, "/admin/problem", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, c.token(), &resp)
	if err != nil {
		return nil, wrap("create problem", err)
	}
	return &resp, nil
}

// DeleteProblem removes a problem and its test cases
func (c *Client) DeleteProblem(ctx context.Context, id string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Request(ctx, "/admin/problem/"+url.PathEscape(id), RequestOptions{
		Method: http.MethodDelete,
	}, c.token(), &resp)
	if err != nil {
		return nil, wrap("delete problem", err)
	}
	return &resp, nil
}

// GetTestCases lists the test cases of a problem
func (c *Client) GetTestCases(ctx context.Context, problemID string) ([]TestCase, error) {
	var testCases []TestCase
	path := "/admin/problem/" + url.PathEscape(problemID) + "/testcases"
	if err := c.Request(ctx, path, RequestOptions{}, c.token(), &testCases); err != nil {
		return nil, wrap("load test cases", err)
	}
	return testCases, nil
}

// AddTestCase attaches a test case to a problem
func (c *Client) AddTestCase(ctx context.Context, problemID string, req CreateTestCaseRequest) (*MessageResponse, error) {
	var resp MessageResponse
	path := "/admin/problem/" + url.PathEscape(problemID) + "/testcase"
	err := c.Request(ctx, path, RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, c.token(), &resp)
	if err != nil {
		return nil, wrap("add test case", err)
	}
	return &resp, nil
}

// DeleteTestCase removes one test case
func (c *Client) DeleteTestCase(ctx context.Context, id int) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Request(ctx, "/admin/testcase/"+strconv.Itoa(id), RequestOptions{
		Method: http.MethodDelete,
	}, c.token(), &resp)
	if err != nil {
		return nil, wrap("delete test case", err)
	}
	return &resp, nil
}

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algohub-dev/algohub/internal/auth"
	"github.com/algohub-dev/algohub/internal/models"
)

// currentSession returns the session set by JWTAuthMiddleware or answers 500
func (s *Server) currentSession(c *gin.Context) (*auth.SessionData, bool) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		s.logger.Error().Msg("Session data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return sessionData, true
}

// findProblem loads the problem named by the :uuid path parameter
func (s *Server) findProblem(c *gin.Context) (*models.Problem, bool) {
	problemUUID := c.Param("uuid")
	if _, err := uuid.Parse(problemUUID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid problem UUID"})
		return nil, false
	}

	var problem models.Problem
	if err := models.FindByUUID(s.db, problemUUID, &problem); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Str("problem_uuid", problemUUID).Msg("Failed to get problem")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get problem"})
		return nil, false
	}
	return &problem, true
}

// solvedSet returns the UUIDs of problems the user has an accepted solution for
func (s *Server) solvedSet(userID string) (map[string]bool, error) {
	var uuids []string
	err := s.db.Model(&models.Solution{}).
		Where("user_id = ? AND status = ?", userID, models.SolutionAccepted).
		Distinct().
		Pluck("problem_uuid", &uuids).Error
	if err != nil {
		return nil, err
	}

	solved := make(map[string]bool, len(uuids))
	for _, id := range uuids {
		solved[id] = true
	}
	return solved, nil
}

// problemsFor lists every problem with the user's solved flags
func (s *Server) problemsFor(userID string) ([]ProblemResponse, error) {
	var problems []models.Problem
	if err := s.db.Order("id ASC").Find(&problems).Error; err != nil {
		return nil, err
	}

	solved, err := s.solvedSet(userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ProblemResponse, len(problems))
	for i, p := range problems {
		resp[i] = toProblemResponse(&p, solved[p.UUID])
	}
	return resp, nil
}

func toProblemResponse(p *models.Problem, solved bool) ProblemResponse {
	return ProblemResponse{
		ID:          p.ID,
		UUID:        p.UUID,
		Name:        p.Name,
		Difficulty:  p.Difficulty,
		Description: p.Description,
		Solved:      solved,
	}
}

func (s *Server) toProblemSolution(sol *models.Solution) ProblemSolution {
	details, err := compareSolution(s.db, sol)
	if err != nil {
		s.logger.Warn().Err(err).Str("solution_id", sol.ID).Msg("Failed to compare solution")
	}
	return ProblemSolution{
		ResultDetails: details,
		CreatedAt:     sol.CreatedAt,
		Code:          sol.Code,
		Language:      sol.Language,
		Status:        sol.Status,
	}
}

func (s *Server) listProblems(c *gin.Context) {
	sessionData, ok := s.currentSession(c)
	if !ok {
		return
	}

	problems, err := s.problemsFor(sessionData.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list problems")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get problems"})
		return
	}

	c.JSON(http.StatusOK, problems)
}

func (s *Server) getProblem(c *gin.Context) {
	sessionData, ok := s.currentSession(c)
	if !ok {
		return
	}

	problem, ok := s.findProblem(c)
	if !ok {
		return
	}

	var latest models.Solution
	err := s.db.Where("user_id = ? AND problem_uuid = ? AND status = ?",
		sessionData.UserID, problem.UUID, models.SolutionAccepted).
		Order("created_at DESC").
		First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error().Err(err).Msg("Failed to get solution")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get solution"})
		return
	}

	resp := toProblemResponse(problem, err == nil)
	if resp.Solved {
		solution := s.toProblemSolution(&latest)
		resp.Solution = &solution
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) submitSolution(c *gin.Context) {
	sessionData, ok := s.currentSession(c)
	if !ok {
		return
	}

	problem, ok := s.findProblem(c)
	if !ok {
		return
	}

	var req SolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "language" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code and language are required", "details": err.Error()})
		return
	}

	var testCases []models.TestCase
	if err := s.db.Where("problem_uuid = ?", problem.UUID).Order("id ASC").Find(&testCases).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to get test cases")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if len(testCases) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "test cases not found"})
		return
	}

	verdict, err := s.judge.Judge(c.Request.Context(), Submission{
		ProblemUUID: problem.UUID,
		Language:    req.Language,
		Code:        req.Code,
		TestCases:   testCases,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("problem_uuid", problem.UUID).Msg("Failed to judge solution")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// Compilation failures never produced a program and are not recorded
	if verdict.Failure == MessageCompilationFailed {
		c.JSON(http.StatusBadRequest, SubmitResult{
			Status:       StatusFailed,
			Message:      MessageCompilationFailed,
			ErrorDetails: verdict.ErrorDetails,
		})
		return
	}

	solution := &models.Solution{
		UserID:          sessionData.UserID,
		ProblemUUID:     problem.UUID,
		Code:            req.Code,
		Language:        req.Language,
		Status:          models.SolutionRejected,
		ExecutionTimeMS: verdict.TimeMS,
		MemoryUsageKB:   verdict.MemoryKB,
	}
	if verdict.Passed() {
		solution.Status = models.SolutionAccepted
	}
	if err := s.db.Create(solution).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to save solution")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	s.logger.Info().
		Str("user_id", sessionData.UserID).
		Str("problem_uuid", problem.UUID).
		Str("language", req.Language).
		Str("status", solution.Status).
		Msg("Solution submitted")

	if verdict.Failure != "" {
		c.JSON(http.StatusBadRequest, SubmitResult{
			Status:       StatusFailed,
			Message:      verdict.Failure,
			ErrorDetails: verdict.ErrorDetails,
		})
		return
	}

	details := s.toProblemSolution(solution).ResultDetails
	if !verdict.Passed() {
		c.JSON(http.StatusOK, SubmitResult{
			Status:      StatusFailed,
			Message:     MessageTestCasesFailed,
			FailedTests: verdict.FailedTests,
			Details:     &details,
		})
		return
	}

	c.JSON(http.StatusOK, SubmitResult{
		Status:  StatusSuccess,
		Message: MessageAllPassed,
		Details: &details,
	})
}

func (s *Server) listSolutions(c *gin.Context) {
	sessionData, ok := s.currentSession(c)
	if !ok {
		return
	}

	query := s.db.Where("user_id = ?", sessionData.UserID)
	if problemUUID := c.Query("problem_uuid"); problemUUID != "" {
		query = query.Where("problem_uuid = ?", problemUUID)
	}

	var solutions []models.Solution
	if err := query.Order("created_at DESC").Find(&solutions).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list solutions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get solutions"})
		return
	}

	resp := make([]ProblemSolution, len(solutions))
	for i := range solutions {
		resp[i] = s.toProblemSolution(&solutions[i])
	}

	c.JSON(http.StatusOK, gin.H{"solutions": resp})
}

func (s *Server) getProfile(c *gin.Context) {
	sessionData, ok := s.currentSession(c)
	if !ok {
		return
	}

	problems, err := s.problemsFor(sessionData.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list problems")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	var total, accepted int64
	base := s.db.Model(&models.Solution{}).Where("user_id = ?", sessionData.UserID).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count solutions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	var acceptedSolutions []models.Solution
	if err := base.Where("status = ?", models.SolutionAccepted).Select("created_at").Find(&acceptedSolutions).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load accepted solutions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	accepted = int64(len(acceptedSolutions))

	days := make([]time.Time, len(acceptedSolutions))
	for i, sol := range acceptedSolutions {
		days[i] = sol.CreatedAt
	}
	current, longest := streaks(days, time.Now())

	resp := ProfileResponse{
		UserID:        sessionData.UserID,
		Username:      sessionData.Username,
		Role:          sessionData.Role,
		Streak:        current,
		LongestStreak: longest,
		SuccessRate:   successRate(accepted, total),
		Problems:      problems,
	}
	for _, p := range problems {
		if !p.Solved {
			continue
		}
		switch p.Difficulty {
		case models.DifficultyEasy:
			resp.ProblemsByDifficulty.Easy++
		case models.DifficultyMedium:
			resp.ProblemsByDifficulty.Medium++
		case models.DifficultyHard:
			resp.ProblemsByDifficulty.Hard++
		}
	}

	c.JSON(http.StatusOK, resp)
}

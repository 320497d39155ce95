package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/algohub-dev/algohub/internal/models"
)

func (s *Server) getDashboard(c *gin.Context) {
	var users, problems, solutions int64
	for _, q := range []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &users},
		{&models.Problem{}, &problems},
		{&models.Solution{}, &solutions},
	} {
		if err := s.db.Model(q.model).Count(q.dst).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to count records")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Welcome to the admin dashboard",
		"users":     users,
		"problems":  problems,
		"solutions": solutions,
	})
}

func (s *Server) createProblem(c *gin.Context) {
	var req CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		s.logger.Debug().Err(err).Msg("Problem validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	problem := &models.Problem{
		Name:        req.Name,
		Difficulty:  req.Difficulty,
		Description: req.Description,
	}
	if err := s.db.Create(problem).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to add problem")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add problem"})
		return
	}

	s.logger.Info().Str("problem_uuid", problem.UUID).Str("name", problem.Name).Msg("Problem created")
	c.JSON(http.StatusOK, gin.H{"message": "problem added successfully", "uuid": problem.UUID})
}

func (s *Server) deleteProblem(c *gin.Context) {
	problem, ok := s.findProblem(c)
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("problem_uuid = ?", problem.UUID).Delete(&models.TestCase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("problem_uuid = ?", problem.UUID).Delete(&models.Solution{}).Error; err != nil {
			return err
		}
		return tx.Delete(problem).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Str("problem_uuid", problem.UUID).Msg("Failed to delete problem")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete problem"})
		return
	}

	s.logger.Info().Str("problem_uuid", problem.UUID).Msg("Problem deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Problem and all its testcases deleted successfully"})
}

func (s *Server) listTestCases(c *gin.Context) {
	problem, ok := s.findProblem(c)
	if !ok {
		return
	}

	testCases := []models.TestCase{}
	if err := s.db.Where("problem_uuid = ?", problem.UUID).Order("id ASC").Find(&testCases).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to get test cases")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get test cases"})
		return
	}

	c.JSON(http.StatusOK, testCases)
}

func (s *Server) addTestCase(c *gin.Context) {
	problem, ok := s.findProblem(c)
	if !ok {
		return
	}

	var req CreateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected output is required", "details": err.Error()})
		return
	}

	testCase := &models.TestCase{
		ProblemUUID: problem.UUID,
		Input:       req.Input,
		Output:      req.Output,
	}
	if err := s.db.Create(testCase).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to add test case")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add test case"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "test case added successfully"})
}

func (s *Server) deleteTestCase(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testcase ID format"})
		return
	}

	var testCase models.TestCase
	if err := s.db.First(&testCase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "testcase not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find testcase")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete testcase"})
		return
	}

	if err := s.db.Delete(&testCase).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete testcase")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete testcase"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "testcase deleted successfully"})
}

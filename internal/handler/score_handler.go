package handler

import (
	"net/http"

	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/internal/service"
	"anoa.com/wikigradebook/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScoreHandler struct {
	scores      service.ScoreService
	evaluations service.EvaluationService
	userRepo    repository.UserRepository
}

func NewScoreHandler(scores service.ScoreService, evaluations service.EvaluationService, userRepo repository.UserRepository) *ScoreHandler {
	return &ScoreHandler{
		scores:      scores,
		evaluations: evaluations,
		userRepo:    userRepo,
	}
}

func (h *ScoreHandler) MyScores(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	report, err := h.scores.ComputeStudentScores(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ViewUserScores shows one student's report. Students may only look at
// their own; instructors may look at anyone's.
func (h *ScoreHandler) ViewUserScores(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if actorID != targetID {
		actor, err := h.userRepo.FindByID(c.Request.Context(), actorID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !actor.IsInstructor() {
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own scores"})
			return
		}
	}

	report, err := h.scores.ComputeStudentScores(c.Request.Context(), targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// EditUserScores is the instructor view of every assignment row for one
// student, evaluated or not, plus their adjustments.
func (h *ScoreHandler) EditUserScores(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	form, err := h.evaluations.UserScoresEditForm(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// EditAssignmentScores is the instructor view of every student row for one
// assignment.
func (h *ScoreHandler) EditAssignmentScores(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}

	form, err := h.evaluations.AssignmentScoresEditForm(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *ScoreHandler) Summary(c *gin.Context) {
	summary, err := h.scores.InstructorSummary(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

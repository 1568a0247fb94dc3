package handler

import (
	"net/http"

	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/internal/service"
	"anoa.com/wikigradebook/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GradebookHandler serves the management views: record listings and the
// edit forms the submit endpoint writes back.
type GradebookHandler struct {
	assignments service.AssignmentService
	groups      service.GroupService
	evaluations service.EvaluationService
	adjustments service.AdjustmentService
	scores      service.ScoreService
	search      service.MeiliSearchService
	userRepo    repository.UserRepository
}

func NewGradebookHandler(
	assignments service.AssignmentService,
	groups service.GroupService,
	evaluations service.EvaluationService,
	adjustments service.AdjustmentService,
	scores service.ScoreService,
	search service.MeiliSearchService,
	userRepo repository.UserRepository,
) *GradebookHandler {
	return &GradebookHandler{
		assignments: assignments,
		groups:      groups,
		evaluations: evaluations,
		adjustments: adjustments,
		scores:      scores,
		search:      search,
		userRepo:    userRepo,
	}
}

// Home is the module entry point. Instructors land on the assignment list;
// everyone else gets their own score report.
func (h *GradebookHandler) Home(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if user.IsInstructor() {
		assignments, err := h.assignments.List(c.Request.Context())
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"view": "assignments", "data": assignments})
		return
	}

	report, err := h.scores.ComputeStudentScores(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "scores", "data": report})
}

func (h *GradebookHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.assignments.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

func (h *GradebookHandler) ListGroups(c *gin.Context) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// EditAssignment returns the form data for one assignment, or a blank form
// when the id is "new".
func (h *GradebookHandler) EditAssignment(c *gin.Context) {
	id, isNew, ok := recordIDParam(c)
	if !ok {
		return
	}

	form, err := h.assignments.EditForm(c.Request.Context(), id, isNew)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *GradebookHandler) EditGroup(c *gin.Context) {
	id, isNew, ok := recordIDParam(c)
	if !ok {
		return
	}

	form, err := h.groups.EditForm(c.Request.Context(), id, isNew)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// EditEvaluation needs both halves of the composite key as query params.
func (h *GradebookHandler) EditEvaluation(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	assignmentID, ok := parseUintParam(c.Query("assignment_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}

	form, err := h.evaluations.EditForm(c.Request.Context(), userID, assignmentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *GradebookHandler) EditAdjustment(c *gin.Context) {
	id, isNew, ok := recordIDParam(c)
	if !ok {
		return
	}

	// A new adjustment form can be pre-targeted at a student.
	userID := uuid.Nil
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		userID = parsed
	}

	form, err := h.adjustments.EditForm(c.Request.Context(), id, isNew, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// SearchToken hands the client a tenant token scoped to its role so it can
// query the assignment index directly.
func (h *GradebookHandler) SearchToken(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	token, err := h.search.GenerateSearchToken(user.Role.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

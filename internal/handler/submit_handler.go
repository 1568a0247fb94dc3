package handler

import (
	"net/http"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/service"
	"anoa.com/wikigradebook/pkg/response"
	"anoa.com/wikigradebook/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SubmitHandler struct {
	submit service.SubmitService
	tokens service.FormTokenService
}

func NewSubmitHandler(submit service.SubmitService, tokens service.FormTokenService) *SubmitHandler {
	return &SubmitHandler{
		submit: submit,
		tokens: tokens,
	}
}

// GetToken mints the anti-forgery token a client must echo back on submit.
func (h *SubmitHandler) GetToken(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

func (h *SubmitHandler) Submit(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.tokens.Verify(req.Token, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.submit.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

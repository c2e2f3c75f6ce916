package handlers

import (
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"eventman/internal/dto"
	"eventman/pkg/validator"
)

func (h *Handler) RegisterUser(c *ginext.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	user, err := h.svc.RegisterUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusCreated, "User created successfully", user)
}

func (h *Handler) Login(c *ginext.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	tok, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Login successful", tok)
}

func (h *Handler) CurrentUser(c *ginext.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context(), requesterID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}

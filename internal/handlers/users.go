// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/repository"
	"github.com/labstack/echo/v4"
)

// paginationInfo is the listing envelope.
type paginationInfo struct {
	TotalUsers  int64 `json:"totalUsers"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
}

// ListUsers handles GET /api/users/all?page&limit&name.
func (h *Handlers) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}

	users, total, err := h.repo.ListAccounts(c.Request().Context(), repository.ListAccountsParams{
		Role:  models.AccountUser,
		Page:  page,
		Limit: limit,
		Name:  c.QueryParam("name"),
	})
	if err != nil {
		return fail(c, err, "Server Error while fetching users")
	}

	return respond(c, http.StatusOK, "Users fetched successfully", map[string]any{
		"pagination": paginationInfo{
			TotalUsers:  total,
			TotalPages:  int64(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			PageSize:    limit,
		},
		"users": users,
	})
}

// GetUser handles GET /api/users/:id.
func (h *Handlers) GetUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid user id.", nil)
	}

	user, err := h.repo.GetAccountByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respond(c, http.StatusNotFound, "User not found", nil)
		}
		return fail(c, err, "Server Error while fetching user")
	}

	return respond(c, http.StatusOK, "User fetched successfully", user)
}

// CreateUser handles POST /api/users: administrative creation without token
// issuance.
func (h *Handlers) CreateUser(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	role, err := parseRole(req.UserType)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Unknown user type.", nil)
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.PhoneNumber == "" {
		return respond(c, http.StatusBadRequest, "Please provide all required fields", nil)
	}

	account, err := h.auth.CreateAccount(c.Request().Context(), req.params(role))
	if err != nil {
		return fail(c, err, "Server Error while creating user")
	}

	return respond(c, http.StatusCreated, "User created successfully", account)
}

// UpdateUserRequest carries the mutable profile fields.
type UpdateUserRequest struct {
	AvatarURL   *string `json:"avatar_url"`
	FirstName   *string `json:"first_name"`
	MiddleName  *string `json:"middle_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

// UpdateUser handles PUT /api/users/:id. Absent fields keep their value.
func (h *Handlers) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid user id.", nil)
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}

	account, err := h.repo.GetAccountByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respond(c, http.StatusNotFound, "User not found", nil)
		}
		return fail(c, err, "Server Error while updating user")
	}

	if req.AvatarURL != nil {
		account.AvatarURL = *req.AvatarURL
	}
	if req.FirstName != nil {
		account.FirstName = *req.FirstName
	}
	if req.MiddleName != nil {
		account.MiddleName = *req.MiddleName
	}
	if req.LastName != nil {
		account.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		account.PhoneNumber = *req.PhoneNumber
	}

	if err := h.repo.UpdateAccountProfile(c.Request().Context(), account); err != nil {
		return fail(c, err, "Server Error while updating user")
	}

	return respond(c, http.StatusOK, "User updated successfully", account)
}

// DeleteUser handles DELETE /api/users/:id.
func (h *Handlers) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid user id.", nil)
	}

	if err := h.repo.DeleteAccount(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respond(c, http.StatusNotFound, "User not found", nil)
		}
		return fail(c, err, "Server Error while deleting user")
	}

	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

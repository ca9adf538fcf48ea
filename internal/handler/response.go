package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/internal/constants"
	"github.com/yoyda/auth-service/internal/dto"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/model"
	"github.com/yoyda/auth-service/pkg/validation"
)

func respondError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err)))
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity,
		constants.BuildValidationErrorResponse("Validation failed", validation.Messages(err)))
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		EmailVerifiedAt:  user.EmailVerifiedAt,
		TwoFactorEnabled: user.IsTwoFactorEnabled(),
		CreatedAt:        user.CreatedAt,
	}
}

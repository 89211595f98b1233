// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/akash-acog/sol/internal/interfaces/http/middleware"
	"github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// respondError maps an application error to its HTTP status and writes the
// standard error body. Internal details are never leaked, only the AppError
// code, message and detail.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ptypes.ErrorResponse{
		Code:      string(code),
		Message:   errors.DefaultMessageForCode(code),
		RequestID: middleware.GetRequestID(c),
	}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}

	c.AbortWithStatusJSON(status, resp)
}

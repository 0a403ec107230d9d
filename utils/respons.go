package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError writes the error envelope. AppErrors pick their status code
// from their kind; anything else is an internal error.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(HTTPStatus(appErr.Kind), JSONResponse{
			Status:  false,
			Message: appErr.Message,
			Kind:    appErr.Kind,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

// RespondErrorCode keeps the old explicit-status form for handlers that map
// binding failures themselves.
func RespondErrorCode(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

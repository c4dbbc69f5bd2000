package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/fanin/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data  any                  `json:"data"`
	Error *apperrors.ErrorBody `json:"error,omitempty"`
}

// RespondWithError derives the status and body from the AppError in err's
// chain; any other error is sent as a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondPartial sends a 200 response carrying data together with the error
// that made it incomplete.
func RespondPartial(c *gin.Context, data any, err error) {
	body := apperrors.Wrap(err).ToResponse().Error
	c.JSON(http.StatusOK, DataResponse{Data: data, Error: &body})
}

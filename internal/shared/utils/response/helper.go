package response

import (
	"festivaltickets/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError answers with the status code mapped from a domain error.
// Messages of non-domain errors are not exposed.
func RespondError(c *gin.Context, message string, err error) {
	code := apperrors.HTTPStatus(err)
	var details interface{}
	if apperrors.IsDomain(err) {
		details = err.Error()
	}
	RespondJSON(c, "error", code, message, nil, details)
}

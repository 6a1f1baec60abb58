package middleware

import (
	"errors"
	"net/http"

	"dreamseller-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Error translates errors attached to the gin context into JSON responses.
// Register it last so handlers only call c.Error and return.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}

		var base errutil.BaseError
		if errors.As(err.Err, &base) {
			c.JSON(base.Code.HTTPStatus(), base.JSON())
			return
		}

		if errors.Is(err.Err, gorm.ErrRecordNotFound) {
			base = errutil.NotFound("resource not found", nil).(errutil.BaseError)
			c.JSON(base.Code.HTTPStatus(), base.JSON())
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    errutil.StatusInternal,
				"message": err.Error(),
			},
		})
	}
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err using the status and code carried by an
// apierr.Error. Anything else is a 500 with a generic message.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errInternal)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondLoading tells the client the session check is still running.
func RespondLoading(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"view": "loading"})
}

func RespondRedirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

type internalError struct{}

func (internalError) Error() string { return "internal error" }

var errInternal error = internalError{}

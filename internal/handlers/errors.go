package handlers

import (
	"errors"
	"net/http"

	"todo-api/internal/apperrors"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "internal server error"

// respondError writes the status and body for err. Server-side failures are
// logged in full, reported to sentry when a hub is attached and answered with
// a generic message.
func respondError(c *gin.Context, log *logrus.Logger, op string, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.WithField("operation", op).WithError(err).Error("request failed")
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("operation", op)
				hub.CaptureException(err)
			})
		}
		c.JSON(status, gin.H{"error": internalErrorMessage})
		return
	}

	body := gin.H{"error": err.Error()}

	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		if len(ve.InvalidFields) > 0 {
			body["invalidFields"] = ve.InvalidFields
			body["allowedFields"] = ve.AllowedFields
		}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
	}
	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) && nf.ID != 0 {
		body["id"] = nf.ID
	}

	log.WithField("operation", op).WithError(err).Debug("request rejected")
	c.JSON(status, body)
}

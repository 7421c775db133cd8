package server

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutrition-tracker/internal/apperr"
)

func (h *handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	body := gin.H{"message": apperr.PublicMessage(err)}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Field != "" {
		body["field"] = ae.Field
	}

	if kind == apperr.KindInternal || kind == apperr.KindUpstream {
		h.log.Errorw("request failed",
			"request_id", c.GetString(ctxRequestID),
			"path", c.FullPath(),
			"kind", kind.String(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body into dst. When optional is set an
// empty body is accepted.
func bindJSON(c *gin.Context, dst interface{}, optional bool) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if optional && errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation(typeErr.Field, typeErr.Field+" has the wrong type")
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("body", "request body is required")
	}
	return apperr.Validation("body", "request body must be valid JSON")
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("id", "id must be a positive integer")
	}
	return id, nil
}

package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-catalog-cache/pkg/failure"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo holds the client-facing part of a failure.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes where a listing came from and which page it is.
type Meta struct {
	Page      int    `json:"page,omitempty"`
	PerPage   int    `json:"per_page,omitempty"`
	Total     int    `json:"total,omitempty"`
	Source    string `json:"source,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func successWithMeta(c *gin.Context, status int, data any, meta *Meta) {
	if meta != nil {
		meta.RequestID = requestID(c)
	}
	c.JSON(status, Response{Success: true, Data: data, Meta: meta})
}

// fail writes err as an error envelope. The message never includes the
// internal cause.
func fail(c *gin.Context, err error) {
	fe := failure.From(err)
	if fe == nil {
		fe = failure.New(failure.KindUnknown, "unexpected failure")
	}

	msg := fe.Message
	if msg == "" {
		msg = string(fe.Kind)
	}
	c.JSON(fe.HTTPStatus(), Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    strings.ToUpper(string(fe.Kind)),
			Message: msg,
		},
	})
}

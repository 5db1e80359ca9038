package utils

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Details []FieldDetail `json:"details,omitempty"`
}

type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

func ErrorResponse(c *gin.Context, statusCode int, body ErrorBody) {
	c.AbortWithStatusJSON(statusCode, body)
}

// ParseID parses a positive integer path parameter.
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(id), nil
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700", // offset without colon, e.g. +0100
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISODate accepts a full RFC 3339 timestamp, a local date-time or a
// bare date. Values without a zone are read as UTC.
func ParseISODate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

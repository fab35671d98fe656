package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 366
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

func validationError(c *gin.Context, message string, err error) {
	resp := ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
	if err != nil {
		resp.Details = stringPtr(err.Error())
	}
	c.JSON(http.StatusBadRequest, resp)
}

func internalError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Details: stringPtr(err.Error()),
	})
}

// userIDParam binds the userId path parameter, answering 400 when it is not a UUID
func userIDParam(c *gin.Context) (string, bool) {
	var userID types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "userId", c.Param("userId"), &userID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		validationError(c, "Invalid user ID format", err)
		return "", false
	}
	return userID.String(), true
}

// dateRange is an inclusive range of whole calendar days
type dateRange struct {
	Start time.Time
	End   time.Time
	// Explicit is false when neither bound was given
	Explicit bool
}

// parseDateRange binds the start and end query parameters (YYYY-MM-DD, inclusive).
// A missing end means today; a missing start means defaultWindowDays ending at end.
func parseDateRange(c *gin.Context, now time.Time) (dateRange, error) {
	var startParam, endParam *types.Date
	if err := runtime.BindQueryParameter("form", true, false, "start", c.Request.URL.Query(), &startParam); err != nil {
		return dateRange{}, fmt.Errorf("start must be YYYY-MM-DD: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "end", c.Request.URL.Query(), &endParam); err != nil {
		return dateRange{}, fmt.Errorf("end must be YYYY-MM-DD: %w", err)
	}

	endDay := normalize.StartOfDay(now.In(time.Local))
	if endParam != nil {
		endDay = localDay(*endParam)
	}

	startDay := endDay.AddDate(0, 0, -(defaultWindowDays - 1))
	if startParam != nil {
		startDay = localDay(*startParam)
	}

	if endDay.Before(startDay) {
		return dateRange{}, fmt.Errorf("start date must be before or equal to end date")
	}
	if normalize.DaysBetween(startDay, endDay) >= maxWindowDays {
		return dateRange{}, fmt.Errorf("range must not exceed %d days", maxWindowDays)
	}

	return dateRange{
		Start:    startDay,
		End:      endDay.AddDate(0, 0, 1).Add(-time.Millisecond),
		Explicit: startParam != nil || endParam != nil,
	}, nil
}

// localDay reads a bound date, which parses as UTC midnight, as a local calendar day
func localDay(d types.Date) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.Local)
}

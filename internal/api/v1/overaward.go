package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/service"
	"github.com/studentaid/disbursement/internal/types"
)

type OverawardHandler struct {
	service service.OverawardService
	log     *logger.Logger
}

func NewOverawardHandler(service service.OverawardService, log *logger.Logger) *OverawardHandler {
	return &OverawardHandler{service: service, log: log}
}

// GetBalance returns the outstanding overaward balance of a student. An
// optional as_of query parameter (RFC 3339) replays the ledger up to that
// instant.
func (h *OverawardHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := c.Param("id")

	var (
		resp *dto.OverawardBalanceResponse
		err  error
	)
	if raw := c.Query("as_of"); raw != "" {
		asOf, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			c.Error(ierr.WithError(parseErr).
				WithHint("as_of must be an RFC 3339 timestamp").
				Mark(ierr.ErrValidation))
			return
		}
		resp, err = h.service.BalanceAsOf(ctx, studentID, asOf)
	} else {
		resp, err = h.service.Balance(ctx, studentID)
	}
	if err != nil {
		h.log.Errorw("failed to get overaward balance", "student_id", studentID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecordOveraward appends a manual entry to the student's ledger
func (h *OverawardHandler) RecordOveraward(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := c.Param("id")

	var req dto.RecordOverawardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordOveraward(ctx, studentID, req)
	if err != nil {
		h.log.Errorw("failed to record overaward", "student_id", studentID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListEntries returns the ledger entries of a student, oldest first
func (h *OverawardHandler) ListEntries(c *gin.Context) {
	filter := &overaward.Filter{
		StudentID:      c.Param("id"),
		AwardValueCode: strings.ToUpper(c.Query("award_value_code")),
		OriginType:     types.OverawardOriginType(c.Query("origin_type")),
	}

	resp, err := h.service.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.log.Errorw("failed to list overaward entries", "student_id", filter.StudentID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

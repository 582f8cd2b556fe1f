package cron

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studentaid/disbursement/internal/api/dto"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/types"
)

// WorkflowStarter is satisfied by *temporal.Service
type WorkflowStarter interface {
	StartWorkflow(ctx context.Context, workflowType types.TemporalWorkflowType, intensity types.OfferingIntensity) (*dto.TriggerWorkflowResponse, error)
}

// ECertCronHandler lets an external scheduler or an operator start the
// e-Cert batch jobs of one stream.
type ECertCronHandler struct {
	starter WorkflowStarter
	log     *logger.Logger
}

func NewECertCronHandler(starter WorkflowStarter, log *logger.Logger) *ECertCronHandler {
	return &ECertCronHandler{
		starter: starter,
		log:     log,
	}
}

func (h *ECertCronHandler) GenerateECert(c *gin.Context) {
	h.start(c, types.TemporalECertGenerationWorkflow)
}

func (h *ECertCronHandler) ProcessResponses(c *gin.Context) {
	h.start(c, types.TemporalECertFeedbackWorkflow)
}

func (h *ECertCronHandler) start(c *gin.Context, workflowType types.TemporalWorkflowType) {
	intensity, err := types.ParseOfferingIntensity(c.Param("intensity"))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Offering intensity must be ft or pt").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.starter.StartWorkflow(c.Request.Context(), workflowType, intensity)
	if err != nil {
		h.log.Errorw("failed to start workflow",
			"workflow_type", workflowType,
			"offering_intensity", intensity,
			"error", err)
		c.Error(err)
		return
	}

	h.log.Infow("started e-Cert workflow",
		"workflow_type", workflowType,
		"workflow_id", resp.WorkflowID,
		"run_id", resp.RunID)
	c.JSON(http.StatusAccepted, resp)
}

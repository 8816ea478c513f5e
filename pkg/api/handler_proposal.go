package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// submitProposalHandler handles POST /proposals.
//
// By default the job runs in the background and the response carries
// status "in_progress"; poll GET /proposals/:id for the result. With
// ?wait=1 the request blocks until the job is terminal.
func (s *Server) submitProposalHandler(c *echo.Context) error {
	var req models.ProposalRequest
	if err := c.Bind(&req); err != nil {
		// Malformed bodies are rejected like any other validation failure.
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if wait := c.QueryParam("wait"); wait == "1" || wait == "true" {
		snap, err := s.manager.Run(c.Request().Context(), &req)
		if err != nil {
			if snap == nil {
				// Rejected before execution started.
				return mapJobError(err)
			}
			// The job ran and failed; surface the first critical failure.
			return echo.NewHTTPError(http.StatusInternalServerError, snap.Error)
		}
		return c.JSON(http.StatusOK, &SubmitResponse{
			RequestID:      snap.ID,
			Topic:          snap.Topic,
			Status:         "completed",
			WordCount:      snap.Proposal.Metadata.TotalWordCount,
			PartialSuccess: snap.Proposal.Metadata.PartialSuccess,
		})
	}

	id, err := s.manager.Start(&req)
	if err != nil {
		return mapJobError(err)
	}
	return c.JSON(http.StatusOK, &SubmitResponse{
		RequestID: id,
		Topic:     req.Topic,
		Status:    "in_progress",
	})
}

// getProposalHandler handles GET /proposals/:id: the current snapshot,
// including the full proposal once the job completed.
func (s *Server) getProposalHandler(c *echo.Context) error {
	snap, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return mapJobError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// cancelProposalHandler handles POST /proposals/:id/cancel.
func (s *Server) cancelProposalHandler(c *echo.Context) error {
	id := c.Param("id")
	if err := s.manager.Cancel(id); err != nil {
		return mapJobError(err)
	}
	return c.JSON(http.StatusOK, &CancelResponse{
		RequestID: id,
		Message:   "cancellation requested",
	})
}

package aggregator

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fanin/fanin"
	"github.com/kbukum/fanin/server"
)

// Handler serves aggregations over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the aggregator routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/aggregate", h.Aggregate)
	r.GET("/upstreams", h.Upstreams)
}

// Aggregate handles GET /aggregate. Repeating ?upstream=name restricts the
// run to those upstreams.
func (h *Handler) Aggregate(c *gin.Context) {
	report, err := h.svc.Aggregate(c.Request.Context(), c.QueryArray("upstream")...)

	var failures *fanin.Failures
	switch {
	case err == nil:
		server.RespondOK(c, report)
	case stderrors.As(err, &failures):
		server.RespondPartial(c, report, failures.AppError())
	default:
		server.RespondWithError(c, err)
	}
}

// Upstreams handles GET /upstreams.
func (h *Handler) Upstreams(c *gin.Context) {
	server.RespondOK(c, h.svc.Upstreams())
}

package httpapi

import (
	"net/http"

	"call-recording/internal/audit"
	"call-recording/internal/calls"

	"github.com/gin-gonic/gin"
)

// ActiveCalls lists in-flight tracking rows for operators.
func (h Handlers) ActiveCalls(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1 and limit between 1 and 100"})
		return
	}
	rows, total, err := h.Calls.ActiveCalls(c.Request.Context(), q.Search, q.Page, q.Limit)
	if err != nil {
		serverError(c, "active calls failed", err)
		return
	}
	if rows == nil {
		rows = []calls.CallState{}
	}
	c.JSON(http.StatusOK, gin.H{"calls": rows, "total": total, "page": q.Page, "limit": q.Limit})
}

func (h Handlers) CallHistory(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	uuid := c.Param("uuid")
	events, err := h.Audit.History(c.Request.Context(), uuid)
	if err != nil {
		serverError(c, "call history failed", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"uuid": uuid, "events": events})
}

package telephony

import (
	"context"
	"errors"
	"net/http"

	"call-recording/internal/calls"
	"call-recording/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallLifecycle is the subset of *calls.Coordinator the webhooks drive.
type CallLifecycle interface {
	OnCallAnswered(ctx context.Context, uuid string) (calls.Outcome, error)
	OnCallEvent(ctx context.Context, uuid string, status calls.ProviderStatus) (calls.Outcome, error)
	OnRecordingEvent(ctx context.Context, uuid, recordingURL string, status calls.ProviderStatus) (calls.Outcome, error)
}

// WebhookHandler converts Vonage webhooks to coordinator calls.
//
// No business logic here. The coordinator runs on a context detached from
// the request so a provider disconnect does not abort an ingest.
type WebhookHandler struct {
	Calls CallLifecycle

	// BridgeNumber is the number answered calls are connected to.
	BridgeNumber  string
	Disclosure    string
	PublicBaseURL string
}

func (h WebhookHandler) HandleAnswer(c *gin.Context) {
	log := logger.FromGin(c)

	var in answerPayload
	_ = c.ShouldBindQuery(&in)
	if in.UUID == "" && c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	if in.UUID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "uuid is required"})
		return
	}

	ncco, err := BuildAnswerNCCO(recordingEventURL(h.PublicBaseURL, c.Request), h.BridgeNumber, h.Disclosure)
	if err != nil {
		log.Error("ncco build failed", "err", err)
		internalError(c)
		return
	}

	out, err := h.Calls.OnCallAnswered(detached(c), in.UUID)
	if err != nil {
		log.Error("call answer failed", "call_uuid", in.UUID, "err", err)
		internalError(c)
		return
	}
	log.Info("call answered", "call_uuid", in.UUID, "action", out.Action, "reason", out.Reason)

	c.JSON(http.StatusOK, ncco)
}

func (h WebhookHandler) HandleCallEvent(c *gin.Context) {
	log := logger.FromGin(c)

	var in callEventPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	out, err := h.Calls.OnCallEvent(detached(c), in.UUID, calls.ProviderStatus(in.Status))
	if err != nil {
		log.Error("call event failed", "call_uuid", in.UUID, "status", in.Status, "err", err)
		internalError(c)
		return
	}
	log.Info("call event", "call_uuid", in.UUID, "status", in.Status, "action", out.Action, "reason", out.Reason)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h WebhookHandler) HandleRecordingEvent(c *gin.Context) {
	log := logger.FromGin(c)

	var in recordingEventPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	status := calls.ProviderStatus(in.Status)
	url := in.recordingURL()
	if status == calls.StatusCompleted && url == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	out, err := h.Calls.OnRecordingEvent(detached(c), in.UUID, url, status)
	if err != nil {
		var ie *calls.IngestError
		if errors.As(err, &ie) {
			log.Error("recording ingest failed", "call_uuid", in.UUID, "stage", ie.Stage, "err", ie.Err)
		} else {
			log.Error("recording event failed", "call_uuid", in.UUID, "err", err)
		}
		internalError(c)
		return
	}
	log.Info("recording event", "call_uuid", in.UUID, "status", in.Status, "action", out.Action, "reason", out.Reason)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func internalError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

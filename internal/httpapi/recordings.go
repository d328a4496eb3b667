package httpapi

import (
	"errors"
	"net/http"
	"time"

	"call-recording/internal/auth"
	"call-recording/internal/recordings"
	"call-recording/internal/reporting"

	"github.com/gin-gonic/gin"
)

const defaultMaxUploadBytes = 100 << 20

// pageQuery is shared by the list endpoints. Limits mirror utils.MaxLimit.
type pageQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
}

func (h Handlers) ListRecordings(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1 and limit between 1 and 100"})
		return
	}
	page, err := h.Recordings.List(c.Request.Context(), q.Search, q.Page, q.Limit)
	if err != nil {
		serverError(c, "recording list failed", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type createRecordingForm struct {
	CallerID string `form:"caller_id"`
	Duration *int   `form:"duration" binding:"omitempty,min=0"`
}

func (h Handlers) CreateRecording(c *gin.Context) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var form createRecordingForm
	if err := c.ShouldBind(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "audio file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		serverError(c, "open upload failed", err)
		return
	}
	defer f.Close()

	in := recordings.Upload{Filename: fh.Filename, CallerID: form.CallerID, Duration: form.Duration}
	if id, ok := callerID(c); ok {
		in.UserID = id
	}
	if role, err := auth.Role(c.Request.Context()); err == nil {
		in.Role = role
	}

	rec, err := h.Recordings.CreateFromUpload(c.Request.Context(), in, f)
	if errors.Is(err, recordings.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		serverError(c, "recording upload failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "recording_id": rec.ID})
}

type dashboardQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (h Handlers) Dashboard(c *gin.Context) {
	var q dashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from/to must be RFC3339"})
		return
	}
	out, err := h.Reporting.Dashboard(c.Request.Context(), reporting.TimeRange{From: q.From, To: q.To})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
		return
	}
	if err != nil {
		serverError(c, "dashboard failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

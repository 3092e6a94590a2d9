package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmdbreizh/site-backend/internal/review/repository"
	"github.com/cmdbreizh/site-backend/internal/review/service"
	"github.com/cmdbreizh/site-backend/internal/review/submitcache"
	"github.com/cmdbreizh/site-backend/pkg/logger"
	"github.com/cmdbreizh/site-backend/pkg/metrics"
)

// DeviceTokenHeader carries the opaque token the browser uses to identify
// itself to the advisory submission cache.
const DeviceTokenHeader = "X-Device-Token"

// Handler exposes the review workflow over HTTP. The cache may be nil when
// redis is not configured; the pending endpoint then reports no entry.
type Handler struct {
	svc     *service.Service
	cache   *submitcache.Cache
	baseURL string
}

func New(svc *service.Service, cache *submitcache.Cache, baseURL string) *Handler {
	return &Handler{svc: svc, cache: cache, baseURL: baseURL}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	grp := r.Group("/api/reviews")
	{
		grp.GET("", h.ListPublished)
		grp.POST("", h.Submit)
		grp.GET("/validate", h.Validate)
		grp.POST("/update-direct", h.UpdateDirect)
		grp.GET("/pending", h.Pending)
	}
}

// RegisterAdminRoutes mounts the administrative listing; callers attach the
// auth middleware to the group.
func (h *Handler) RegisterAdminRoutes(r gin.IRouter) {
	r.GET("/reviews", h.ListAll)
}

// ListPublished handles GET /api/reviews
func (h *Handler) ListPublished(c *gin.Context) {
	reviews, err := h.svc.Published(c.Request.Context())
	if err != nil {
		logger.Errorf("list published reviews: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ListAll handles GET /api/admin/reviews
func (h *Handler) ListAll(c *gin.Context) {
	reviews, err := h.svc.All(c.Request.Context())
	if err != nil {
		logger.Errorf("list all reviews: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// Submit handles POST /api/reviews: a new submission, or an edit when the
// body carries an id. Responses keep the uniform {success, message, reviewId}
// shape; internal error detail never reaches the client.
func (h *Handler) Submit(c *gin.Context) {
	var in service.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed request body"})
		return
	}
	kind := "create"
	if in.ID != "" {
		kind = "edit"
	}

	id, err := h.svc.SubmitOrUpdate(c.Request.Context(), in)
	if err != nil {
		metrics.ReviewSubmissions.WithLabelValues(kind, "error").Inc()
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid review input"})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "review not found"})
		default:
			logger.Errorf("review submission failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "review submission failed"})
		}
		return
	}
	metrics.ReviewSubmissions.WithLabelValues(kind, "ok").Inc()

	if device := c.GetHeader(DeviceTokenHeader); device != "" && h.cache != nil {
		if err := h.cache.Record(c.Request.Context(), device, id); err != nil {
			// advisory only
			logger.Warnf("submission cache record failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reviewId": id})
}

// Validate handles GET /api/reviews/validate?action={approve|reject}&token=<id>,
// the target of the emailed moderation links. Outcomes are carried in a URL
// fragment so they are neither resent to the server nor replayed on reload.
func (h *Handler) Validate(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		// without a token there is no review to build a redirect around
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing token"})
		return
	}
	action := c.Query("action")
	if action != "approve" && action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid action"})
		return
	}

	var err error
	if action == "approve" {
		err = h.svc.Approve(c.Request.Context(), token)
	} else {
		err = h.svc.Reject(c.Request.Context(), token)
	}

	switch {
	case err == nil:
		status := "approved"
		if action == "reject" {
			status = "rejected"
		}
		metrics.ReviewModerations.WithLabelValues(action, "ok").Inc()
		h.redirect(c, status)
	case errors.Is(err, repository.ErrNotFound):
		metrics.ReviewModerations.WithLabelValues(action, "notfound").Inc()
		h.redirect(c, "notfound")
	default:
		logger.Errorf("moderation %s failed for token %s: %v", action, token, err)
		metrics.ReviewModerations.WithLabelValues(action, "error").Inc()
		if action == "approve" {
			h.redirect(c, "error&message=publication")
		} else {
			h.redirect(c, "error&message=deletion")
		}
	}
}

// UpdateDirect handles POST /api/reviews/update-direct: a non-content edit
// that never touches published state and sends no email.
func (h *Handler) UpdateDirect(c *gin.Context) {
	var req struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Email  string  `json:"email"`
		Rating float64 `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed request body"})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing review id"})
		return
	}

	err := h.svc.UpdateDirect(c.Request.Context(), req.ID, req.Name, req.Email, req.Rating)
	switch {
	case err == nil:
		metrics.ReviewSubmissions.WithLabelValues("edit_direct", "ok").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "review updated"})
	case errors.Is(err, repository.ErrNotFound):
		metrics.ReviewSubmissions.WithLabelValues("edit_direct", "notfound").Inc()
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "review not found"})
	case errors.Is(err, service.ErrValidation):
		metrics.ReviewSubmissions.WithLabelValues("edit_direct", "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid review input"})
	default:
		logger.Errorf("direct review update failed: %v", err)
		metrics.ReviewSubmissions.WithLabelValues("edit_direct", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "review update failed"})
	}
}

// Pending handles GET /api/reviews/pending: the advisory lookup the form uses
// to prefill a pending review and display the cooldown countdown.
func (h *Handler) Pending(c *gin.Context) {
	device := c.GetHeader(DeviceTokenHeader)
	if device == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing device token"})
		return
	}
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}

	entry, err := h.cache.Get(c.Request.Context(), device)
	if err != nil {
		logger.Warnf("submission cache lookup failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}

	rv, err := h.svc.Get(c.Request.Context(), entry.ReviewID)
	if err != nil {
		// review is gone (rejected or deleted); drop the stale entry
		if errors.Is(err, repository.ErrNotFound) {
			_ = h.cache.Clear(c.Request.Context(), device)
		}
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending":         true,
		"review":          rv,
		"cooldownSeconds": int(h.cache.CooldownRemaining(entry).Seconds()),
	})
}

func (h *Handler) redirect(c *gin.Context, status string) {
	c.Redirect(http.StatusFound, h.baseURL+"/?tab=Reviews#status="+status)
}

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmdbreizh/site-backend/internal/mailer"
	"github.com/cmdbreizh/site-backend/pkg/logger"
)

// ContactMailer is the slice of the mail gateway the contact form needs.
type ContactMailer interface {
	SendContact(ctx context.Context, email mailer.ContactEmail) error
}

// RegisterContactRoutes mounts POST /api/contact. The form is an arbitrary
// JSON object; every field is relayed as a key/value line to the company
// address, with the sender's email (when present) as reply-to.
func RegisterContactRoutes(r gin.IRouter, m ContactMailer) {
	r.POST("/api/contact", func(c *gin.Context) {
		var form map[string]interface{}
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}

		fields := make(map[string]string, len(form))
		for k, v := range form {
			fields[k] = fmt.Sprint(v)
		}
		replyTo := ""
		if e, ok := form["email"].(string); ok {
			replyTo = e
		}

		if err := m.SendContact(c.Request.Context(), mailer.ContactEmail{Fields: fields, ReplyTo: replyTo}); err != nil {
			logger.Errorf("contact form relay failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

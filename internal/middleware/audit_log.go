package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/service"
)

// AuditLog records an administrative action, such as a pricing change, with
// the acting admin and the snapshot version it produced.
func AuditLog(loggingService service.LoggingService, c *gin.Context, actionType, message string, version int, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}

	entry := auditEntry(c, "info", actionType, message, fields)
	entry.SnapshotVersion = version
	writeAudit(loggingService, entry)
}

// AuditLogError records a failed administrative action.
func AuditLogError(loggingService service.LoggingService, c *gin.Context, actionType, message string, err error, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}

	entry := auditEntry(c, "error", actionType, message, fields)
	if err != nil {
		entry.Error = err.Error()
	}
	writeAudit(loggingService, entry)
}

func auditEntry(c *gin.Context, level, actionType, message string, fields map[string]interface{}) *model.LogEntry {
	return &model.LogEntry{
		Timestamp:  time.Now().UTC(),
		Level:      level,
		Message:    message,
		RequestID:  GetRequestID(c),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Actor:      GetActor(c),
		ActionType: actionType,
		Fields:     fields,
	}
}

// writeAudit hands the entry to the async logger, or writes it in the
// background when no async logger is running.
func writeAudit(loggingService service.LoggingService, entry *model.LogEntry) {
	if al := GetAsyncLogger(); al != nil && al.Log(entry) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = loggingService.CreateLog(ctx, entry)
	}()
}

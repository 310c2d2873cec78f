package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit action types recorded for administrative changes.
const (
	ActionLogin          = "login"
	ActionUpdatePricing  = "update_pricing_config"
	ActionAddService     = "add_service"
	ActionUpdateService  = "update_service"
	ActionRemoveService  = "remove_service"
	ActionSetCostPerArea = "set_cost_per_area"
)

// LogEntry is a request or audit log document.
//
// @Description Stored request or audit log entry
type LogEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Level      string             `bson:"level" json:"level"`
	Message    string             `bson:"message" json:"message"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method     string             `bson:"method,omitempty" json:"method,omitempty"`
	Path       string             `bson:"path,omitempty" json:"path,omitempty"`
	StatusCode int                `bson:"status_code,omitempty" json:"status_code,omitempty"`
	Duration   int64              `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string             `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	// Actor is the authenticated admin, if any
	Actor string `bson:"actor,omitempty" json:"actor,omitempty"`
	// Client is the API client name for quoting requests
	Client string `bson:"client,omitempty" json:"client,omitempty"`
	// ActionType is set on audit entries, e.g. "add_service"
	ActionType string `bson:"action_type,omitempty" json:"action_type,omitempty"`
	// SnapshotVersion is the pricing version in force when the entry was written
	SnapshotVersion int                    `bson:"snapshot_version,omitempty" json:"snapshot_version,omitempty"`
	Fields          map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

// IsAudit reports whether the entry records an administrative action.
func (e *LogEntry) IsAudit() bool {
	return e.ActionType != ""
}

var auditActions = map[string]struct{}{
	ActionLogin:          {},
	ActionUpdatePricing:  {},
	ActionAddService:     {},
	ActionUpdateService:  {},
	ActionRemoveService:  {},
	ActionSetCostPerArea: {},
}

// IsAuditAction reports whether action is one of the recorded action types.
func IsAuditAction(action string) bool {
	_, ok := auditActions[action]
	return ok
}

// LogQueryOptions filters log queries. Zero values mean "any".
type LogQueryOptions struct {
	RequestID  string
	Level      string
	ActionType string
	Actor      string
	Path       string
	StartTime  *time.Time
	EndTime    *time.Time
	// AuditOnly restricts the query to entries with an action type
	AuditOnly bool
	Limit     int
	Skip      int
}

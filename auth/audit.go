package auth

import (
	"circle/models"

	"go.uber.org/zap"
)

const (
	eventRegistered           = "USER_REGISTERED"
	eventLogin                = "USER_LOGIN"
	eventLoginFailed          = "LOGIN_FAILED"
	eventAccountLocked        = "ACCOUNT_LOCKED"
	eventLogout               = "USER_LOGOUT"
	eventTokenRefresh         = "TOKEN_REFRESH"
	eventInvalidToken         = "INVALID_TOKEN"
	eventPasswordChanged      = "PASSWORD_CHANGED"
	eventPasswordChangeFailed = "PASSWORD_CHANGE_FAILED"
	eventAccessDenied         = "ACCESS_DENIED"
)

func audit(event string, user *models.User, client ClientInfo, details string) {
	zap.L().Info("security event",
		zap.String("event", event),
		zap.Uint64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("ip", client.IP),
		zap.String("details", details),
	)
	userID := user.ID
	writeAuditLog(&models.AuditLog{
		UserID:    &userID,
		Action:    event,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Details:   details,
	})
}

// auditAnonymous is used when the user is not known (or not trusted)
func auditAnonymous(event, username string, client ClientInfo, details string) {
	zap.L().Warn("security event",
		zap.String("event", event),
		zap.String("username", username),
		zap.String("ip", client.IP),
		zap.String("details", details),
	)
	if username != "" {
		details = "username: " + username + ", " + details
	}
	writeAuditLog(&models.AuditLog{
		Action:    event,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Details:   details,
	})
}

func writeAuditLog(entry *models.AuditLog) {
	if len(entry.UserAgent) > 300 {
		entry.UserAgent = entry.UserAgent[:300]
	}
	if err := models.AuditLogCreate(entry); err != nil {
		zap.S().Errorf("Audit log error: %v", err)
	}
}

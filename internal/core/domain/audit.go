package domain

import "time"

// AuditAction identifies the kind of account mutation being journaled.
type AuditAction string

const (
	ActionRegister AuditAction = "register"
	ActionConsume  AuditAction = "consume"
	ActionSetTime  AuditAction = "set_time"
	ActionLogout   AuditAction = "logout"
)

// AuditEvent is one entry in the balance-mutation journal. Balance is the
// account's TimeLeft after the mutation was applied.
type AuditEvent struct {
	Login     string      `json:"login"`
	HWID      string      `json:"hwid,omitempty"`
	Action    AuditAction `json:"action"`
	Minutes   int64       `json:"minutes"`
	Balance   int64       `json:"balance"`
	Timestamp time.Time   `json:"timestamp"`
}

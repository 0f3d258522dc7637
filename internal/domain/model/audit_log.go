package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Audit trail entries are append-only: never mutated, never deleted.
// Entry IDs are ULIDs so the tables sort chronologically by primary key.

// ConnectionLog records one user-attributed action (login, redemption,
// bot add/delete) together with the caller's IP.
type ConnectionLog struct {
	ID        string
	UserID    string
	IPAddress string
	Action    string
	Details   string
	Timestamp time.Time
}

// SystemLog records a panel-level event with no request attached
// (registrations, code lifecycle, sweep expirations).
type SystemLog struct {
	ID        string
	LogType   string
	Message   string
	Details   string
	Timestamp time.Time
}

func NewConnectionLog(userID, ip, action, details string) *ConnectionLog {
	return &ConnectionLog{
		ID:        newLogID(),
		UserID:    userID,
		IPAddress: ip,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	}
}

func NewSystemLog(logType, message, details string) *SystemLog {
	return &SystemLog{
		ID:        newLogID(),
		LogType:   logType,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

func newLogID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

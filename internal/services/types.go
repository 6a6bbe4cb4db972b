package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an admin account able to manage directory and theft-data content.
type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

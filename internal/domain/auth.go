package domain

import "time"

// SubjectType differentiates token subjects.
type SubjectType string

const (
	SubjectTypeAgent  SubjectType = "AGENT"
	SubjectTypeSystem SubjectType = "SYSTEM"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *AgentRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}

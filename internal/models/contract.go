package models

import "time"

// ContractStatus represents the status of a contract
type ContractStatus string

const (
	ContractStatusDraft  ContractStatus = "draft"
	ContractStatusSent   ContractStatus = "sent"
	ContractStatusSigned ContractStatus = "signed"
)

// Contract represents an agreement between a user and a client
type Contract struct {
	ID        int64          `json:"id"`
	ClientID  int64          `json:"client_id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Status    ContractStatus `json:"status"`
	SignedBy  string         `json:"signed_by,omitempty"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	SignedAt  *time.Time     `json:"signed_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

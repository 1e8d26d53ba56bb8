package models

import "time"

// Group status constants
const (
	StatusOpen  = "open"
	StatusDrawn = "drawn"
)

// Request types

type CreateGroupRequest struct {
	Name          string `json:"name"`
	OrganizerName string `json:"organizer_name"`
}

type JoinGroupRequest struct {
	Name string `json:"name"`
}

type AddExclusionRequest struct {
	GiverID   string `json:"giver_id"`
	BlockedID string `json:"blocked_id"`
}

// Response types

type CreateGroupResponse struct {
	GroupID   string `json:"group_id"`
	AdminKey  string `json:"admin_key"`
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type JoinGroupResponse struct {
	MemberID    string `json:"member_id"`
	MemberToken string `json:"member_token"`
}

type AddExclusionResponse struct {
	Message string `json:"message"`
}

type DrawResponse struct {
	AssignmentCount int       `json:"assignment_count"`
	DrawnAt         time.Time `json:"drawn_at"`
}

type ResetDrawResponse struct {
	Message string `json:"message"`
}

type RevealResponse struct {
	ReceiverID   string    `json:"receiver_id"`
	ReceiverName string    `json:"receiver_name"`
	ViewedAt     time.Time `json:"viewed_at"`
}

// Domain types

type Group struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	OrganizerName string     `json:"organizer_name"`
	Status        string     `json:"status"`
	ShareSlug     *string    `json:"share_slug,omitempty"`
	DrawnAt       *time.Time `json:"drawn_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Member struct {
	ID          string     `json:"id"`
	GroupID     string     `json:"group_id"`
	Name        string     `json:"name"`
	MemberToken string     `json:"-"` // Never expose in JSON
	IPHash      *string    `json:"-"` // Never expose in JSON
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
}

type Exclusion struct {
	GroupID   string    `json:"group_id"`
	GiverID   string    `json:"giver_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

type GroupWithMembers struct {
	Group   Group    `json:"group"`
	Members []Member `json:"members"`
}

type GroupAdminView struct {
	Group      Group       `json:"group"`
	Members    []Member    `json:"members"`
	Exclusions []Exclusion `json:"exclusions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

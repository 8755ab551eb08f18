package model

// Viewer is the caller identity forwarded by the gateway.
type Viewer struct {
	UserID       string
	Name         string
	Role         Role
	Jurisdiction Jurisdiction
}

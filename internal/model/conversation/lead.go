package conversation

// Lead is a completed (name, email) capture handed off for persistence.
type Lead struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

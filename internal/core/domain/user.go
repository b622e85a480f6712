package domain

// User is a back-office operator. Only used for authentication and audit
// attribution; authorization beyond "logged in" is out of scope here.
type User struct {
	UserID       string `json:"userID"` // Primary key (UUID)
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Disabled     bool   `json:"disabled"`
	AuditFields
}

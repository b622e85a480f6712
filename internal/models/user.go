package models

// User represents a back-office operator row.
type User struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	Disabled     bool   `db:"disabled"`
	AuditFields
}

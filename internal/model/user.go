package model

// User owns accounts, categories, budgets, goals and alerts.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}

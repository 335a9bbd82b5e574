package users

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUsher Role = "usher"
)

type User struct {
	ID         int64
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Telegram struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

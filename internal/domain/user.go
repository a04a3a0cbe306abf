package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operator"
)

// User is a panel/API operator account. BotScope lists the bot slugs
// the account may manage; "*" grants all bots.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // Hashed password
	Role      UserRole  `json:"role"`
	Status    string    `json:"status"` // Active, Inactive, Blocked
	BotScope  string    `json:"bot_scope" gorm:"default:*"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanManage reports whether the user may operate on the given bot.
func (u *User) CanManage(bot string) bool {
	if u.Role == UserRoleAdmin || u.BotScope == "*" {
		return true
	}
	for _, s := range splitScope(u.BotScope) {
		if s == bot {
			return true
		}
	}
	return false
}

func splitScope(scope string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(scope); i++ {
		if i == len(scope) || scope[i] == ',' {
			if i > start {
				out = append(out, scope[start:i])
			}
			start = i + 1
		}
	}
	return out
}

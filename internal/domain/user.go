package domain

import "time"

type User struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserName         string    `gorm:"uniqueIndex;size:64;not null" json:"userName"`
	Email            string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash     string    `gorm:"size:191;not null" json:"-"`
	RegistrationDate time.Time `json:"registrationDate"`
	LastLoginTime    time.Time `json:"lastLoginTime"`
	IsBlocked        bool      `gorm:"not null;default:false" json:"isBlocked"`
	EmailConfirmed   bool      `gorm:"not null;default:false" json:"emailConfirmed"`
}

func (User) TableName() string { return "users" }

// UserRepository 用户持久化契约；查不到统一返回 (nil, nil)
type UserRepository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	FindByUserName(name string) (*User, error)
	// ListByLastLogin 按 last_login_time 倒序返回全部用户（管理端列表不分页）
	ListByLastLogin() ([]User, error)
	Update(u *User) error
	// Delete 物理删除（本项目不做软删）
	Delete(id string) error
}

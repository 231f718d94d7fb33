package contracts

import (
	"time"

	"gamarriando/pkg/schema"
)

// UserBase - изменяемые поля пользователя
type UserBase struct {
	Email           string     `json:"email" validate:"email"`
	FirstName       string     `json:"firstName" validate:"min=1,max=100"`
	LastName        string     `json:"lastName" validate:"min=1,max=100"`
	Phone           *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	Avatar          *string    `json:"avatar,omitempty" validate:"omitempty,url"`
	IsActive        bool       `json:"isActive"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
}

func defaultUserBase() UserBase {
	return UserBase{IsActive: true}
}

// UserCreate - тело регистрации; пароль подтверждается вторым полем
type UserCreate struct {
	UserBase
	Password        string `json:"password" validate:"min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"min=8"`
}

type UserUpdate struct {
	Email           *string    `json:"email,omitempty" validate:"omitempty,email"`
	FirstName       *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone           *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	Avatar          *string    `json:"avatar,omitempty" validate:"omitempty,url"`
	IsActive        *bool      `json:"isActive,omitempty"`
	IsEmailVerified *bool      `json:"isEmailVerified,omitempty"`
	IsPhoneVerified *bool      `json:"isPhoneVerified,omitempty"`
	Roles           []UserRole `json:"roles,omitempty" validate:"omitempty,dive,enum"`
}

type UserResponse struct {
	UserBase
	ID          int64      `json:"id" validate:"gt=0"`
	Roles       []UserRole `json:"roles" validate:"required,dive,enum"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt   time.Time  `json:"updatedAt" validate:"required"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// UserProfile - пользователь вместе с адресами и настройками
type UserProfile struct {
	UserResponse
	Addresses   []any          `json:"addresses,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// HasRole сообщает, выдана ли пользователю роль
func (u UserResponse) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	UserBaseSchema = schema.New[UserBase]("user.base", schema.WithDefaults(defaultUserBase))

	UserCreateSchema = schema.New[UserCreate]("user.create",
		schema.WithDefaults(func() UserCreate { return UserCreate{UserBase: defaultUserBase()} }),
		schema.WithRefinement("confirmPassword", "password_mismatch", "Passwords don't match",
			func(u UserCreate) bool { return u.Password == u.ConfirmPassword }),
	)

	UserUpdateSchema = schema.New[UserUpdate]("user.update")

	UserResponseSchema = schema.New[UserResponse]("user.response",
		schema.WithDefaults(func() UserResponse { return UserResponse{UserBase: defaultUserBase()} }))

	UserProfileSchema = schema.New[UserProfile]("user.profile",
		schema.WithDefaults(func() UserProfile {
			return UserProfile{UserResponse: UserResponse{UserBase: defaultUserBase()}}
		}))
)

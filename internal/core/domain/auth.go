package domain

// LoginRequest is the body of POST /auth.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned by POST /auth.
type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	User        AuthUser `json:"user"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"omitempty,oneof=student staff admin"`
	DOB      string `json:"dob" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest is the body of PATCH /users/:id.
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,min=1"`
	Role  *Role   `json:"role" binding:"omitempty,oneof=student staff admin"`
	DOB   *string `json:"dob" binding:"omitempty,datetime=2006-01-02"`
}

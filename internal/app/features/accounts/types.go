package accounts

import "github.com/dalemusser/collabhub/internal/domain/models"

type signupBody struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Degree    string `json:"degree"`
	RegNumber string `json:"regNumber"`
	Phone     string `json:"phone"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileBody struct {
	Name      *string `json:"name"`
	Degree    *string `json:"degree"`
	RegNumber *string `json:"regNumber"`
	Phone     *string `json:"phone"`
}

type passwordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type resetRequestBody struct {
	Email string `json:"email"`
}

type resetConfirmBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type userResponse struct {
	User models.User `json:"user"`
}

type resetResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

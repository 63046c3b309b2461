// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered student account.
//
// NOTE:
//   - Target membership is not stored on User. A user's teams are found
//     through the members array embedded on each target document.
//   - PasswordHash and the reset-token fields never leave the server.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email      string             `bson:"email" json:"email"`
	FullName   string             `bson:"full_name" json:"name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped

	PasswordHash string `bson:"password_hash" json:"-"`

	Degree    string `bson:"degree,omitempty" json:"degree,omitempty"`
	RegNumber string `bson:"reg_number,omitempty" json:"regNumber,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`

	ResetNonce     *string    `bson:"reset_nonce,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"reset_expires_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the signed-in user's name, ObjectID and a found flag.
// A malformed id in the session fails closed (ok=false).
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// UserID returns just the signed-in user's ObjectID.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	_, id, ok := UserCtx(r)
	return id, ok
}

// IsSelf reports whether hexID names the signed-in user.
func IsSelf(r *http.Request, hexID string) bool {
	id, ok := UserID(r)
	return ok && id.Hex() == hexID
}

package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/inputval"
	"github.com/dalemusser/collabhub/internal/app/system/normalize"
	"github.com/dalemusser/collabhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for stored password hashes.
const bcryptCost = 12

type Store struct {
	c    *mongo.Collection
	cost int
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users"), cost: bcryptCost}
}

// WithCost returns a copy of the store that hashes with cost. Tests use
// bcrypt.MinCost to stay fast.
func (s *Store) WithCost(cost int) *Store {
	return &Store{c: s.c, cost: cost}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrBadCredentials covers both unknown email and wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrResetInvalid is returned when a reset nonce does not match or has expired.
	ErrResetInvalid = errors.New("password reset link is invalid or has expired")

	errBadEmail   = errors.New("email is not valid")
	errNameNeeded = errors.New("name is required")
	errWeakPasswd = errors.New("password must be at least 8 characters")
)

// NewUser is the sign-up payload.
type NewUser struct {
	Email     string
	FullName  string
	Password  string
	Degree    string
	RegNumber string
	Phone     string
}

// Create validates, hashes the password and inserts a new user.
func (s *Store) Create(ctx context.Context, nu NewUser) (models.User, error) {
	email := normalize.Email(nu.Email)
	if !inputval.IsValidEmail(email) {
		return models.User{}, errBadEmail
	}
	name := normalize.Name(nu.FullName)
	if name == "" {
		return models.User{}, errNameNeeded
	}
	if !inputval.IsValidPassword(nu.Password) {
		return models.User{}, errWeakPasswd
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.cost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		FullName:     name,
		FullNameCI:   text.Fold(name),
		PasswordHash: string(hash),
		Degree:       normalize.Name(nu.Degree),
		RegNumber:    normalize.Name(nu.RegNumber),
		Phone:        normalize.Phone(nu.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// IsValidationErr reports whether err came from input validation in Create
// or ChangePassword rather than from storage.
func IsValidationErr(err error) bool {
	return errors.Is(err, errBadEmail) || errors.Is(err, errNameNeeded) || errors.Is(err, errWeakPasswd)
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate returns the user when email and password match.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// ProfileUpdate holds the editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	FullName  *string
	Degree    *string
	RegNumber *string
	Phone     *string
}

// UpdateProfile applies upd and returns the fresh document.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		if name == "" {
			return nil, errNameNeeded
		}
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Degree != nil {
		set["degree"] = normalize.Name(*upd.Degree)
	}
	if upd.RegNumber != nil {
		set["reg_number"] = normalize.Name(*upd.RegNumber)
	}
	if upd.Phone != nil {
		set["phone"] = normalize.Phone(*upd.Phone)
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return s.GetByID(ctx, id)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Store) ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrBadCredentials
	}
	return s.setPassword(ctx, bson.M{"_id": id}, next)
}

func (s *Store) setPassword(ctx context.Context, filter bson.M, password string) error {
	if !inputval.IsValidPassword(password) {
		return errWeakPasswd
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$set":   bson.M{"password_hash": string(hash), "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_nonce": "", "reset_expires_at": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrResetInvalid
	}
	return nil
}

// SetResetNonce records a pending password reset for the user with email.
// Returns mongo.ErrNoDocuments when the email is unknown.
func (s *Store) SetResetNonce(ctx context.Context, email, nonce string, expiresAt time.Time) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	_, err = s.c.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"reset_nonce":      nonce,
		"reset_expires_at": expiresAt.UTC(),
	}})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ResetPassword sets a new password if nonce matches the stored, unexpired
// reset nonce for id. The nonce is consumed.
func (s *Store) ResetPassword(ctx context.Context, id primitive.ObjectID, nonce, password string) error {
	return s.setPassword(ctx, bson.M{
		"_id":              id,
		"reset_nonce":      nonce,
		"reset_expires_at": bson.M{"$gt": time.Now().UTC()},
	}, password)
}

// ClearExpiredResetNonces removes reset state whose expiry has passed.
func (s *Store) ClearExpiredResetNonces(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"reset_expires_at": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{"reset_nonce": "", "reset_expires_at": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

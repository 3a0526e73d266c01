package repo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
)

// credentialFields never leave the store unless a caller asks for them.
var credentialFields = bson.D{
	{Key: "password", Value: 0},
	{Key: "resetPasswordToken", Value: 0},
	{Key: "resetPasswordExpire", Value: 0},
}

func userWhat(id primitive.ObjectID) string { return "user with the id of " + id.Hex() }

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// CreateUser stores u; u.Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) (err error) {
	sp, ctx := startSpan(ctx, "users.insert")
	defer func() { finish(sp, err) }()

	u.Email = normEmail(u.Email)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	res, err := s.colUsers.InsertOne(ctx, u)
	if err != nil {
		return translate(err, "user")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (_ *domain.User, err error) {
	sp, ctx := startSpan(ctx, "users.find_by_id", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	var u domain.User
	err = s.colUsers.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(credentialFields)).Decode(&u)
	if err != nil {
		return nil, translate(err, userWhat(id))
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	sp, ctx := startSpan(ctx, "users.find_by_email")
	defer func() { finish(sp, err) }()

	var u domain.User
	err = s.colUsers.FindOne(ctx, bson.M{"email": normEmail(email)},
		options.FindOne().SetProjection(credentialFields)).Decode(&u)
	if err != nil {
		return nil, translate(err, "user with that email")
	}
	return &u, nil
}

// FindUserWithPassword looks a user up by email including the password hash.
func (s *Store) FindUserWithPassword(ctx context.Context, email string) (_ *domain.User, err error) {
	sp, ctx := startSpan(ctx, "users.find_with_password")
	defer func() { finish(sp, err) }()

	var u domain.User
	if err = s.colUsers.FindOne(ctx, bson.M{"email": normEmail(email)}).Decode(&u); err != nil {
		return nil, translate(err, "user with that email")
	}
	return &u, nil
}

func (s *Store) FindUserByIDWithPassword(ctx context.Context, id primitive.ObjectID) (_ *domain.User, err error) {
	sp, ctx := startSpan(ctx, "users.find_by_id_with_password", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	var u domain.User
	err = s.colUsers.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.D{{Key: "resetPasswordToken", Value: 0}, {Key: "resetPasswordExpire", Value: 0}}),
	).Decode(&u)
	if err != nil {
		return nil, translate(err, userWhat(id))
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, set bson.M) (_ *domain.User, err error) {
	sp, ctx := startSpan(ctx, "users.update", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	if len(set) == 0 {
		return s.FindUserByID(ctx, id)
	}
	if e, ok := set["email"].(string); ok {
		set["email"] = normEmail(e)
	}
	var u domain.User
	err = s.colUsers.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(credentialFields),
	).Decode(&u)
	if err != nil {
		return nil, translate(err, userWhat(id))
	}
	return &u, nil
}

// SetPassword stores a new hash and drops any outstanding reset token.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) (err error) {
	sp, ctx := startSpan(ctx, "users.set_password", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"password": hash},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return translate(errNoDocuments, userWhat(id))
	}
	return nil
}

func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expires time.Time) (err error) {
	sp, ctx := startSpan(ctx, "users.set_reset_token", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	_, err = s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"resetPasswordToken": hash, "resetPasswordExpire": expires.UTC()},
	})
	return err
}

func (s *Store) ClearResetToken(ctx context.Context, id primitive.ObjectID) (err error) {
	sp, ctx := startSpan(ctx, "users.clear_reset_token", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	_, err = s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	return err
}

// ResetPassword atomically matches an unexpired reset token hash, stores the
// new password hash and clears the token, so a token works at most once.
func (s *Store) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (_ *domain.User, err error) {
	sp, ctx := startSpan(ctx, "users.reset_password")
	defer func() { finish(sp, err) }()

	var u domain.User
	err = s.colUsers.FindOneAndUpdate(ctx,
		bson.M{
			"resetPasswordToken":  tokenHash,
			"resetPasswordExpire": bson.M{"$gt": now.UTC()},
		},
		bson.M{
			"$set":   bson.M{"password": passwordHash},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(credentialFields),
	).Decode(&u)
	if err != nil {
		return nil, translate(err, "user with that reset token")
	}
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) (err error) {
	sp, ctx := startSpan(ctx, "users.delete", tracer.Tag("user_id", id.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colUsers.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(errNoDocuments, userWhat(id))
	}
	return nil
}

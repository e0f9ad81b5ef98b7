package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/user"
)

var _ user.Repository = (*userRepository)(nil)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) col() *mongo.Collection { return repo.db.collection(colUsers) }

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	var existing user.User
	err := repo.col().FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	for _, excl := range excludedUsers {
		if excl.ID == existing.ID {
			return nil
		}
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.CheckEmailUniqueness(ctx, usr.Email); err != nil {
		return user.User{}, err
	}
	now := time.Now().UTC()
	usr.CreatedAt = now
	usr.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.query(ctx, bson.M{})
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.get(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.get(ctx, bson.M{"email": email})
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}
	users, err := repo.query(ctx, query)
	if err != nil {
		return nil, err
	}
	if filter.Search == "" {
		return users, nil
	}
	search := strings.ToLower(filter.Search)
	matched := make([]user.User, 0, len(users))
	for _, usr := range users {
		if strings.Contains(strings.ToLower(usr.Name), search) ||
			strings.Contains(strings.ToLower(usr.Email), search) {
			matched = append(matched, usr)
		}
	}
	return matched, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	stored, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}
	// Role and Email are immutable once provisioned.
	usr.Role = stored.Role
	usr.Email = stored.Email
	usr.CreatedAt = stored.CreatedAt
	usr.UpdatedAt = time.Now().UTC()

	res, err := repo.col().ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	_, err := repo.col().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return errors.Wrap(err, "deleting users")
}

func (repo *userRepository) get(ctx context.Context, query bson.M) (user.User, error) {
	var usr user.User
	err := repo.col().FindOne(ctx, query).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) query(ctx context.Context, query bson.M) ([]user.User, error) {
	cur, err := repo.col().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	var users []user.User
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

var _ auth.CredentialRepository = (*credentialRepository)(nil)

type credentialRepository struct {
	db *DB
}

func NewCredentialRepository(db *DB) auth.CredentialRepository {
	return &credentialRepository{db: db}
}

func (repo *credentialRepository) col() *mongo.Collection { return repo.db.collection(colCredentials) }

func (repo *credentialRepository) CreateCredential(ctx context.Context, cred auth.Credential) error {
	now := time.Now().UTC()
	cred.CreatedAt = now
	cred.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, cred); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return errors.Wrap(err, "creating credential")
	}
	return nil
}

func (repo *credentialRepository) GetCredential(ctx context.Context, email string) (auth.Credential, error) {
	var cred auth.Credential
	err := repo.col().FindOne(ctx, bson.M{"_id": email}).Decode(&cred)
	if err == mongo.ErrNoDocuments {
		return auth.Credential{}, auth.ErrNoCredential
	}
	if err != nil {
		return auth.Credential{}, errors.Wrap(err, "getting credential")
	}
	return cred, nil
}

func (repo *credentialRepository) UpdateCredential(ctx context.Context, cred auth.Credential) error {
	cred.UpdatedAt = time.Now().UTC()
	res, err := repo.col().UpdateOne(ctx, bson.M{"_id": cred.Email}, bson.M{"$set": bson.M{
		"passwordHash": cred.PasswordHash,
		"updatedAt":    cred.UpdatedAt,
	}})
	if err != nil {
		return errors.Wrap(err, "updating credential")
	}
	if res.MatchedCount == 0 {
		return auth.ErrNoCredential
	}
	return nil
}

func (repo *credentialRepository) DeleteCredential(ctx context.Context, email string) error {
	_, err := repo.col().DeleteOne(ctx, bson.M{"_id": email})
	return errors.Wrap(err, "deleting credential")
}

package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/troindx/oxidize/internal/auth"
	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/repository"
	"github.com/troindx/oxidize/internal/security"
)

// UserUsecase defines the user account operations.
type UserUsecase interface {
	// Register creates an account with a freshly generated keypair. The
	// returned SecureString holds the private key PEM: it is surfaced to
	// the caller exactly once and never stored, so the transport layer
	// must wipe it after delivery.
	Register(ctx context.Context, params RegisterParams) (*model.User, *security.SecureString, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email       string
	Password    string
	Description string
	Role        int
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Email       *string
	Password    *string
	Description *string
	PublicKey   *string
}

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)

type userUsecase struct {
	userRepo repository.UserRepository
}

// NewUserUsecase creates a new instance of UserUsecase.
func NewUserUsecase(userRepo repository.UserRepository) UserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) Register(
	ctx context.Context,
	params RegisterParams,
) (*model.User, *security.SecureString, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, nil, err
	}

	publicKey, privateKey, err := auth.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        params.Email,
		PasswordHash: passwordHash,
		Description:  params.Description,
		PublicKey:    publicKey,
		Role:         params.Role,
		Verified:     false,
	})
	if err != nil {
		privateKey.Wipe()
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, ErrUserAlreadyExists
		}
		return nil, nil, err
	}

	return user, privateKey, nil
}

func (u *userUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (u *userUsecase) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	repoParams := repository.UpdateUserParams{
		Email:       params.Email,
		Description: params.Description,
		PublicKey:   params.PublicKey,
	}

	if params.Password != nil {
		passwordHash, err := security.HashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		repoParams.PasswordHash = &passwordHash
	}

	user, err := u.userRepo.UpdateUser(ctx, id, repoParams)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

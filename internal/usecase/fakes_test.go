package usecase

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/repository"
)

// duplicateKeyErr mimics the server-side unique index violation the real
// driver surfaces, so mongo.IsDuplicateKeyError recognizes it.
var duplicateKeyErr = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, duplicateKeyErr
		}
	}

	user.ID = bson.NewObjectID()
	clone := *user
	r.users[user.ID.Hex()] = &clone
	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Description != nil {
		user.Description = *params.Description
	}
	if params.PublicKey != nil {
		user.PublicKey = *params.PublicKey
	}
	if params.Verified != nil {
		user.Verified = *params.Verified
	}

	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(r.users, id)
	return user, nil
}

type fakeVerificationRepo struct {
	mu      sync.Mutex
	records map[string]*model.EmailVerification

	// dupOnCreate simulates losing an insert race against a concurrent
	// start for the same user.
	dupOnCreate bool
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{records: map[string]*model.EmailVerification{}}
}

var _ repository.EmailVerificationRepository = (*fakeVerificationRepo)(nil)

func (r *fakeVerificationRepo) CreateVerification(
	_ context.Context,
	verification *model.EmailVerification,
) (*model.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dupOnCreate {
		return nil, duplicateKeyErr
	}

	for _, v := range r.records {
		if v.UserID == verification.UserID {
			return nil, duplicateKeyErr
		}
	}

	verification.ID = bson.NewObjectID()
	clone := *verification
	r.records[verification.ID.Hex()] = &clone
	return verification, nil
}

func (r *fakeVerificationRepo) GetVerification(
	_ context.Context,
	id string,
) (*model.EmailVerification, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.records[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *v
	return &clone, nil
}

func (r *fakeVerificationRepo) GetVerificationByUserID(
	_ context.Context,
	userID bson.ObjectID,
) (*model.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.records {
		if v.UserID == userID {
			clone := *v
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeVerificationRepo) GetVerificationByEmail(
	_ context.Context,
	email string,
) (*model.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.records {
		if v.Email == email {
			clone := *v
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeVerificationRepo) UpdateVerification(
	_ context.Context,
	verification *model.EmailVerification,
) (*model.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[verification.ID.Hex()]; !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *verification
	r.records[verification.ID.Hex()] = &clone
	out := clone
	return &out, nil
}

func (r *fakeVerificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type sentMail struct {
	to           string
	verification model.EmailVerification
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *fakeSender) SendVerification(
	_ context.Context,
	to string,
	verification *model.EmailVerification,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, verification: *verification})
	return nil
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

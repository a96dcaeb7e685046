package handler

import (
	"context"
	"errors"

	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/security"
	"github.com/troindx/oxidize/internal/usecase"
)

type fakeUserUsecase struct {
	registerUser *model.User
	registerKey  string
	registerErr  error
	lastRegister usecase.RegisterParams
	getUser      *model.User
	getErr       error
	updateUser   *model.User
	updateErr    error
	lastUpdate   usecase.UpdateUserParams
	deleteErr    error
	deletedID    string
}

func (f *fakeUserUsecase) Register(
	_ context.Context,
	params usecase.RegisterParams,
) (*model.User, *security.SecureString, error) {
	f.lastRegister = params
	if f.registerErr != nil {
		return nil, nil, f.registerErr
	}
	return f.registerUser, security.SecureStringFrom(f.registerKey), nil
}

func (f *fakeUserUsecase) GetUser(_ context.Context, _ string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getUser, nil
}

func (f *fakeUserUsecase) UpdateUser(
	_ context.Context,
	_ string,
	params usecase.UpdateUserParams,
) (*model.User, error) {
	f.lastUpdate = params
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateUser, nil
}

func (f *fakeUserUsecase) DeleteUser(_ context.Context, id string) (*model.User, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deletedID = id
	return &model.User{}, nil
}

type fakeVerificationUsecase struct {
	startRecord  *model.EmailVerification
	startErr     error
	started      int
	finishRecord *model.EmailVerification
	finishErr    error
	lastCaller   string
	lastRecordID string
	lastSecret   string
}

func (f *fakeVerificationUsecase) StartVerification(
	_ context.Context,
	_ *model.User,
) (*model.EmailVerification, error) {
	f.started++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startRecord, nil
}

func (f *fakeVerificationUsecase) FinishVerification(
	_ context.Context,
	callerID, recordID, secret string,
) (*model.EmailVerification, error) {
	f.lastCaller = callerID
	f.lastRecordID = recordID
	f.lastSecret = secret
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	return f.finishRecord, nil
}

var errBoom = errors.New("boom")

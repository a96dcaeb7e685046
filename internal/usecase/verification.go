package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/troindx/oxidize/internal/mailer"
	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/repository"
)

// VerificationUsecase drives the email-ownership state machine. Per user a
// record moves NoRecord -> Pending on the first start, Pending -> Verified
// on a successful finish, and any start (including one after a successful
// finish) resets the record to Pending with a fresh secret.
type VerificationUsecase interface {
	// StartVerification creates or resets the user's verification record
	// and notifies the user's email address.
	StartVerification(ctx context.Context, user *model.User) (*model.EmailVerification, error)

	// FinishVerification consumes a secret for a record. Failures are
	// reported in a fixed order: record missing, then caller does not own
	// the record, then secret mismatch. Ownership is checked before the
	// secret on purpose, preserving the original status contract (401 for
	// foreign records, 409 for wrong secrets).
	FinishVerification(ctx context.Context, callerID, recordID, secret string) (*model.EmailVerification, error)
}

var (
	ErrVerificationNotFound  = errors.New("email verification not found")
	ErrVerificationOwnership = errors.New("email verification belongs to another user")
	ErrSecretMismatch        = errors.New("email verification secret does not match")
	ErrVerificationConflict  = errors.New("conflicting email verification write")
)

type verificationUsecase struct {
	verificationRepo repository.EmailVerificationRepository
	sender           mailer.Sender
	logger           *zerolog.Logger
	secretLength     int
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
// secretLength is the number of random bytes drawn per secret before
// URL-safe encoding.
func NewVerificationUsecase(
	verificationRepo repository.EmailVerificationRepository,
	sender mailer.Sender,
	logger *zerolog.Logger,
	secretLength int,
) VerificationUsecase {
	return &verificationUsecase{
		verificationRepo: verificationRepo,
		sender:           sender,
		logger:           logger,
		secretLength:     secretLength,
	}
}

func (u *verificationUsecase) StartVerification(
	ctx context.Context,
	user *model.User,
) (*model.EmailVerification, error) {
	secret, err := generateURLSafeSecret(u.secretLength)
	if err != nil {
		return nil, err
	}

	var record *model.EmailVerification

	existing, err := u.verificationRepo.GetVerificationByUserID(ctx, user.ID)
	switch {
	case err == nil:
		// Reuse the existing record: a new start invalidates any previous
		// state, verified or not.
		existing.Secret = secret
		existing.Verified = false
		existing.Email = user.Email

		record, err = u.verificationRepo.UpdateVerification(ctx, existing)
		if err != nil {
			return nil, err
		}

	case errors.Is(err, mongo.ErrNoDocuments):
		record, err = u.verificationRepo.CreateVerification(ctx, &model.EmailVerification{
			UserID:   user.ID,
			Email:    user.Email,
			Secret:   secret,
			Verified: false,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost a race against a concurrent start for the same
				// user; the unique index turned it into a rejected write.
				return nil, ErrVerificationConflict
			}
			return nil, err
		}

	default:
		return nil, err
	}

	// Notification failures do not roll back the record; the user can
	// restart the flow to get a new link.
	if err := u.sender.SendVerification(ctx, record.Email, record); err != nil {
		u.logger.Error().Err(err).Str("email", record.Email).Msg("failed to send verification notification")
	}

	return record, nil
}

func (u *verificationUsecase) FinishVerification(
	ctx context.Context,
	callerID, recordID, secret string,
) (*model.EmailVerification, error) {
	record, err := u.verificationRepo.GetVerification(ctx, recordID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}

	if record.UserID.Hex() != callerID {
		return nil, ErrVerificationOwnership
	}

	if secret != record.Secret {
		return nil, ErrSecretMismatch
	}

	record.Verified = true

	updated, err := u.verificationRepo.UpdateVerification(ctx, record)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// generateURLSafeSecret draws length random bytes and encodes them with
// unpadded URL-safe base64, so the result is safe to embed in a path
// segment.
func generateURLSafeSecret(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

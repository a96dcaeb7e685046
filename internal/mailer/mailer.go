// Package mailer delivers verification notifications. In production it
// sends localized mail over SMTP; in dev mode it logs the verification
// link instead so the flow can be exercised without a relay.
package mailer

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/troindx/oxidize/internal/model"
	"github.com/troindx/oxidize/internal/security"
	"github.com/troindx/oxidize/internal/translator"
)

// Sender notifies a recipient that a verification challenge was started.
type Sender interface {
	SendVerification(ctx context.Context, to string, verification *model.EmailVerification) error
}

// Mailer is the SMTP-backed Sender.
type Mailer struct {
	config     *smtpConfig
	translator *translator.Translator
	logger     *zerolog.Logger
	baseURL    string
	locale     string
	devMode    bool
	password   *security.SecureString
}

// NewMailer creates a Mailer. In dev mode the SMTP configuration is not
// required since nothing is ever sent.
func NewMailer(
	logger *zerolog.Logger,
	tr *translator.Translator,
	baseURL, locale string,
	devMode bool,
) *Mailer {
	cfg := newSMTPConfig(logger)

	if !devMode {
		if err := cfg.validate(); err != nil {
			logger.Fatal().Err(err).Msg("failed to validate mailer configuration")
		}
	}

	password := security.SecureStringFrom(cfg.Password)
	cfg.Password = ""

	return &Mailer{
		config:     cfg,
		translator: tr,
		logger:     logger,
		baseURL:    baseURL,
		locale:     locale,
		devMode:    devMode,
		password:   password,
	}
}

// VerificationLink builds the finish-verification URL for a record. The
// record id and secret travel as path segments.
func VerificationLink(baseURL string, verification *model.EmailVerification) string {
	return fmt.Sprintf("%s/mail/verifications/%s/verify/%s",
		baseURL, verification.ID.Hex(), verification.Secret)
}

// SendVerification delivers the verification link for a record. In dev
// mode the link is logged and no mail is sent.
func (m *Mailer) SendVerification(_ context.Context, to string, verification *model.EmailVerification) error {
	link := VerificationLink(m.baseURL, verification)

	if m.devMode {
		m.logger.Info().Str("link", link).Msg("email verification link")
		return nil
	}

	subject, err := m.translator.T(m.locale, translator.KeyVerifyEmailSubject)
	if err != nil {
		return err
	}

	body, err := m.translator.T(m.locale, translator.KeyVerifyEmailBody, link)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	if m.config.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.config.ReplyTo)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.config.Host, m.config.Port, m.config.Username, m.password.Reveal())

	return dialer.DialAndSend(msg)
}

// smtpConfig holds SMTP configuration for sending verification mail.
type smtpConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	ReplyTo  string `env:"SMTP_REPLY_TO"`
}

// newSMTPConfig creates an smtpConfig instance from environment variables.
func newSMTPConfig(logger *zerolog.Logger) *smtpConfig {
	cfg, err := env.ParseAs[smtpConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}

// validate checks if the mailer configuration is valid.
func (c *smtpConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}

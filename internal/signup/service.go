package signup

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/retenly/retenly/internal/account"
	"github.com/retenly/retenly/internal/notification"
)

// Verification session keys, namespaced per email. Each key expires on its
// own clock; the flow fails closed when any gate's key is gone.
const (
	checkedKeyPrefix  = "signup:checked:"
	otpKeyPrefix      = "signup:otp:"
	otpSentKeyPrefix  = "signup:otp_sent:"
	pendingKeyPrefix  = "signup:pwd:"
	verifiedKeyPrefix = "signup:verified:"

	checkedTTL  = 10 * time.Minute
	otpTTL      = 3 * time.Minute
	otpSentTTL  = 3 * time.Minute
	pendingTTL  = 10 * time.Minute
	verifiedTTL = 3 * time.Minute

	flagTrue  = "true"
	otpDigits = 6

	minPasswordLen  = 8
	passwordSymbols = "!@#$%^&*()_+-={}[]:\";'<>?,./"

	otpMailSubject = "Your verification code"
)

var (
	// ErrEmailNotChecked indicates SendOtp was called before the email
	// uniqueness pre-check, or after the checked flag expired.
	ErrEmailNotChecked = errors.New("email uniqueness check not performed")

	// ErrOtpAlreadySent blocks duplicate code dispatch within the send window.
	ErrOtpAlreadySent = errors.New("verification code already sent")

	// ErrOtpExpired indicates no code is stored for the email.
	ErrOtpExpired = errors.New("verification code expired or not found")

	// ErrOtpMismatch indicates the candidate code does not match the stored one.
	ErrOtpMismatch = errors.New("incorrect verification code")

	// ErrNotVerified indicates CompleteSignup ran before a successful VerifyOtp.
	ErrNotVerified = errors.New("email verification not completed")

	// ErrPasswordMismatch indicates the password supplied at completion differs
	// from the one supplied when the code was requested.
	ErrPasswordMismatch = errors.New("password does not match the one used to request the code")

	// ErrAlreadyRegistered indicates the email gained an account mid-flow.
	ErrAlreadyRegistered = errors.New("email already registered")

	// ErrWeakPassword indicates the password fails the complexity policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain a letter and a symbol")
)

// Service drives the email-OTP signup flow. Session state lives in the vault
// under per-email keys; the account directory is the durable sink.
type Service struct {
	vault            Vault
	accounts         account.Repository
	notifier         notification.Notifier
	defaultCompanyNo int64
}

// NewService builds the signup service, provisioning the default role up
// front so account creation never races a fetch-or-create on the request path.
func NewService(ctx context.Context, vault Vault, accounts account.Repository, notifier notification.Notifier, defaultCompanyNo int64) (*Service, error) {
	if vault == nil {
		return nil, fmt.Errorf("vault is required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if notifier == nil {
		notifier = &notification.LoggerNotifier{}
	}
	if err := accounts.EnsureRole(ctx, account.RoleUser); err != nil {
		return nil, fmt.Errorf("ensure default role: %w", err)
	}
	return &Service{vault: vault, accounts: accounts, notifier: notifier, defaultCompanyNo: defaultCompanyNo}, nil
}

// CheckEmail reports whether the email is free and, when it is, marks the
// uniqueness pre-check as done so SendOtp may follow.
func (s *Service) CheckEmail(ctx context.Context, email string) (available bool, err error) {
	_, err = s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, account.ErrNotFound):
	default:
		return false, err
	}

	if err := s.MarkEmailChecked(ctx, email); err != nil {
		return false, err
	}
	return true, nil
}

// MarkEmailChecked records that the caller confirmed the email is unused.
// The flag lives 10 minutes; after that the caller must re-check.
func (s *Service) MarkEmailChecked(ctx context.Context, email string) error {
	return s.vault.Set(ctx, checkedKeyPrefix+email, flagTrue, checkedTTL)
}

// SendOtp generates a one-time code, caches it and the hashed password, and
// mails the code. The otp-sent flag is reserved atomically before any other
// write and released again if anything downstream fails, so a failed dispatch
// leaves the session retryable.
func (s *Service) SendOtp(ctx context.Context, email, password string) error {
	checked, err := s.vault.Get(ctx, checkedKeyPrefix+email)
	if err != nil {
		if errors.Is(err, ErrKeyAbsent) {
			return ErrEmailNotChecked
		}
		return err
	}
	if checked != flagTrue {
		return ErrEmailNotChecked
	}

	reserved, err := s.vault.SetNX(ctx, otpSentKeyPrefix+email, flagTrue, otpSentTTL)
	if err != nil {
		return err
	}
	if !reserved {
		return ErrOtpAlreadySent
	}

	if err := s.dispatchOtp(ctx, email, password); err != nil {
		// Release the reservation and any partial state so the caller can retry.
		_ = s.vault.Del(ctx, otpSentKeyPrefix+email, otpKeyPrefix+email, pendingKeyPrefix+email)
		return err
	}
	return nil
}

func (s *Service) dispatchOtp(ctx context.Context, email, password string) error {
	code, err := generateOtp()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	// The raw password is hashed immediately; only the hash ever reaches the vault.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.vault.Set(ctx, otpKeyPrefix+email, code, otpTTL); err != nil {
		return err
	}
	if err := s.vault.Set(ctx, pendingKeyPrefix+email, string(hash), pendingTTL); err != nil {
		return err
	}

	message := notification.Message{
		To:      email,
		Subject: otpMailSubject,
		Body:    fmt.Sprintf("Your verification code is %s. Enter it within 3 minutes.", code),
	}
	if err := s.notifier.Send(ctx, message); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

// VerifyOtp compares the candidate against the stored code and marks the
// session verified on an exact match. The code itself stays in place until
// completion cleanup or natural expiry.
func (s *Service) VerifyOtp(ctx context.Context, email, candidate string) error {
	stored, err := s.vault.Get(ctx, otpKeyPrefix+email)
	if err != nil {
		if errors.Is(err, ErrKeyAbsent) {
			return ErrOtpExpired
		}
		return err
	}
	if stored != candidate {
		return ErrOtpMismatch
	}
	return s.vault.Set(ctx, verifiedKeyPrefix+email, flagTrue, verifiedTTL)
}

// CompleteSignup runs the final gates in order, persists the account, and
// clears the verification session. Any gate failure leaves the session
// untouched so the caller can correct input and retry within the TTLs.
func (s *Service) CompleteSignup(ctx context.Context, email, password, name string) (account.User, error) {
	verified, err := s.vault.Get(ctx, verifiedKeyPrefix+email)
	if err != nil && !errors.Is(err, ErrKeyAbsent) {
		return account.User{}, err
	}
	if verified != flagTrue {
		return account.User{}, ErrNotVerified
	}

	pendingHash, err := s.vault.Get(ctx, pendingKeyPrefix+email)
	if err != nil {
		if errors.Is(err, ErrKeyAbsent) {
			return account.User{}, ErrPasswordMismatch
		}
		return account.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(pendingHash), []byte(password)) != nil {
		return account.User{}, ErrPasswordMismatch
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return account.User{}, ErrAlreadyRegistered
	} else if !errors.Is(err, account.ErrNotFound) {
		return account.User{}, err
	}

	if !validPassword(password) {
		return account.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return account.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := account.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		RoleName:     account.RoleUser,
		CompanyNo:    s.defaultCompanyNo,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.accounts.Create(ctx, user); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return account.User{}, ErrAlreadyRegistered
		}
		return account.User{}, err
	}

	// Best-effort cleanup; leftover keys expire on their own TTLs.
	_ = s.vault.Del(ctx,
		checkedKeyPrefix+email,
		otpKeyPrefix+email,
		otpSentKeyPrefix+email,
		pendingKeyPrefix+email,
		verifiedKeyPrefix+email,
	)

	return user, nil
}

// generateOtp draws a 6-digit code from a cryptographically strong source.
func generateOtp() (string, error) {
	var code strings.Builder
	for i := 0; i < otpDigits; i++ {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&code, "%d", digit.Int64())
	}
	return code.String(), nil
}

func validPassword(password string) bool {
	if len(password) < minPasswordLen {
		return false
	}
	var hasLetter, hasSymbol bool
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasLetter && hasSymbol
}

package signup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/retenly/retenly/internal/account"
	"github.com/retenly/retenly/internal/notification"
)

type fakeNotifier struct {
	sent []notification.Message
	fail bool
}

func (f *fakeNotifier) Send(_ context.Context, message notification.Message) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, message)
	return nil
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis, account.Repository, *fakeNotifier) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := account.NewMemoryRepository()
	notifier := &fakeNotifier{}
	svc, err := NewService(context.Background(), NewRedisVault(client), repo, notifier, 1)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, mr, repo, notifier
}

func storedOtp(t *testing.T, mr *miniredis.Miniredis, email string) string {
	t.Helper()
	code, err := mr.Get(otpKeyPrefix + email)
	if err != nil {
		t.Fatalf("read stored code: %v", err)
	}
	return code
}

func TestCheckEmail(t *testing.T) {
	svc, mr, repo, _ := newTestService(t)
	ctx := context.Background()

	available, err := svc.CheckEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("check email: %v", err)
	}
	if !available {
		t.Fatal("expected email to be available")
	}
	if !mr.Exists(checkedKeyPrefix + "a@b.com") {
		t.Fatal("checked flag not set for available email")
	}

	taken := account.User{ID: "00000000-0000-0000-0000-000000000002", Email: "b@b.com"}
	if err := repo.Create(ctx, taken); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	available, err = svc.CheckEmail(ctx, "b@b.com")
	if err != nil {
		t.Fatalf("check taken email: %v", err)
	}
	if available {
		t.Fatal("expected email to be reported taken")
	}
	if mr.Exists(checkedKeyPrefix + "b@b.com") {
		t.Fatal("checked flag set for taken email")
	}
}

func TestSendOtpRequiresEmailCheck(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); !errors.Is(err, ErrEmailNotChecked) {
		t.Fatalf("expected ErrEmailNotChecked, got %v", err)
	}
}

func TestSendOtpAfterCheckExpiry(t *testing.T) {
	svc, mr, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	mr.FastForward(11 * time.Minute)

	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); !errors.Is(err, ErrEmailNotChecked) {
		t.Fatalf("expected ErrEmailNotChecked after expiry, got %v", err)
	}
}

func TestSendOtpDuplicateGuard(t *testing.T) {
	svc, _, _, notifier := newTestService(t)
	ctx := context.Background()

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); !errors.Is(err, ErrOtpAlreadySent) {
		t.Fatalf("expected ErrOtpAlreadySent, got %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly one mail, got %d", len(notifier.sent))
	}
}

func TestSendOtpCodeShape(t *testing.T) {
	svc, mr, _, notifier := newTestService(t)
	ctx := context.Background()

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err != nil {
		t.Fatalf("send: %v", err)
	}

	code := storedOtp(t, mr, "a@b.com")
	if len(code) != otpDigits {
		t.Fatalf("expected %d digit code, got %q", otpDigits, code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code %q", code)
		}
	}
	if !strings.Contains(notifier.sent[0].Body, code) {
		t.Fatalf("mail body %q does not contain code %q", notifier.sent[0].Body, code)
	}
}

func TestSendOtpNeverCachesRawPassword(t *testing.T) {
	svc, mr, _, _ := newTestService(t)
	ctx := context.Background()
	const raw = "Secret1!"

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", raw); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, key := range mr.Keys() {
		value, err := mr.Get(key)
		if err != nil {
			t.Fatalf("read %s: %v", key, err)
		}
		if value == raw {
			t.Fatalf("raw password cached under %s", key)
		}
	}

	pending, err := mr.Get(pendingKeyPrefix + "a@b.com")
	if err != nil {
		t.Fatalf("read pending credential: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(pending), []byte(raw)) != nil {
		t.Fatal("pending credential is not a hash of the raw password")
	}
}

func TestSendOtpNotifierFailureIsRetryable(t *testing.T) {
	svc, mr, _, notifier := newTestService(t)
	ctx := context.Background()

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}

	notifier.fail = true
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err == nil {
		t.Fatal("expected dispatch failure")
	}

	// The reservation and partial state must be rolled back.
	for _, key := range []string{otpSentKeyPrefix + "a@b.com", otpKeyPrefix + "a@b.com", pendingKeyPrefix + "a@b.com"} {
		if mr.Exists(key) {
			t.Fatalf("key %s survived a failed dispatch", key)
		}
	}

	notifier.fail = false
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestVerifyOtp(t *testing.T) {
	svc, mr, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err != nil {
		t.Fatalf("send: %v", err)
	}
	code := storedOtp(t, mr, "a@b.com")

	if err := svc.VerifyOtp(ctx, "a@b.com", "000000"); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("expected ErrOtpMismatch, got %v", err)
	}

	// A wrong guess must not burn the session; the right code still works.
	if err := svc.VerifyOtp(ctx, "a@b.com", code); err != nil {
		t.Fatalf("verify correct code: %v", err)
	}
	if !mr.Exists(verifiedKeyPrefix + "a@b.com") {
		t.Fatal("verified flag not set")
	}
}

func TestVerifyOtpExpired(t *testing.T) {
	svc, mr, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.VerifyOtp(ctx, "a@b.com", "123456"); !errors.Is(err, ErrOtpExpired) {
		t.Fatalf("expected ErrOtpExpired with no session, got %v", err)
	}

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err != nil {
		t.Fatalf("send: %v", err)
	}
	code := storedOtp(t, mr, "a@b.com")

	mr.FastForward(4 * time.Minute)
	if err := svc.VerifyOtp(ctx, "a@b.com", code); !errors.Is(err, ErrOtpExpired) {
		t.Fatalf("expected ErrOtpExpired after TTL, got %v", err)
	}
}

func completeFlow(t *testing.T, svc *Service, mr *miniredis.Miniredis, email, password string) {
	t.Helper()
	ctx := context.Background()
	if err := svc.MarkEmailChecked(ctx, email); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, email, password); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.VerifyOtp(ctx, email, storedOtp(t, mr, email)); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestCompleteSignup(t *testing.T) {
	svc, mr, repo, _ := newTestService(t)
	ctx := context.Background()

	completeFlow(t, svc, mr, "a@b.com", "Secret1!")

	user, err := svc.CompleteSignup(ctx, "a@b.com", "Secret1!", "Alice")
	if err != nil {
		t.Fatalf("complete signup: %v", err)
	}
	if user.Email != "a@b.com" || user.Name != "Alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.RoleName != account.RoleUser {
		t.Fatalf("expected default role, got %s", user.RoleName)
	}
	if user.CompanyNo != 1 {
		t.Fatalf("expected bootstrap company, got %d", user.CompanyNo)
	}

	stored, err := repo.FindByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("account not persisted: %v", err)
	}
	if bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("Secret1!")) != nil {
		t.Fatal("persisted hash does not match password")
	}

	for _, key := range []string{
		checkedKeyPrefix + "a@b.com",
		otpKeyPrefix + "a@b.com",
		otpSentKeyPrefix + "a@b.com",
		pendingKeyPrefix + "a@b.com",
		verifiedKeyPrefix + "a@b.com",
	} {
		if mr.Exists(key) {
			t.Fatalf("session key %s not cleaned up", key)
		}
	}
}

func TestCompleteSignupRequiresVerification(t *testing.T) {
	svc, mr, repo, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.MarkEmailChecked(ctx, "a@b.com"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if err := svc.SendOtp(ctx, "a@b.com", "Secret1!"); err != nil {
		t.Fatalf("send: %v", err)
	}
	_ = mr // code never verified

	if _, err := svc.CompleteSignup(ctx, "a@b.com", "Secret1!", "Alice"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "a@b.com"); !errors.Is(err, account.ErrNotFound) {
		t.Fatal("account persisted without verification")
	}
}

func TestCompleteSignupPasswordSwap(t *testing.T) {
	svc, mr, _, _ := newTestService(t)
	ctx := context.Background()

	completeFlow(t, svc, mr, "a@b.com", "Secret1!")

	if _, err := svc.CompleteSignup(ctx, "a@b.com", "Different1!", "Alice"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestCompleteSignupAlreadyRegistered(t *testing.T) {
	svc, mr, repo, _ := newTestService(t)
	ctx := context.Background()

	completeFlow(t, svc, mr, "a@b.com", "Secret1!")

	// Simulate a concurrent signup landing first.
	rival := account.User{ID: "00000000-0000-0000-0000-000000000001", Email: "a@b.com", RoleName: account.RoleUser}
	if err := repo.Create(ctx, rival); err != nil {
		t.Fatalf("seed rival account: %v", err)
	}

	if _, err := svc.CompleteSignup(ctx, "a@b.com", "Secret1!", "Alice"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestCompleteSignupWeakPassword(t *testing.T) {
	svc, mr, repo, _ := newTestService(t)
	ctx := context.Background()

	completeFlow(t, svc, mr, "a@b.com", "abcdefg1")

	if _, err := svc.CompleteSignup(ctx, "a@b.com", "abcdefg1", "Alice"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "a@b.com"); !errors.Is(err, account.ErrNotFound) {
		t.Fatal("account persisted with weak password")
	}
}

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"abcdefg1", false}, // no symbol
		{"abc123!", false},  // 7 chars
		{"abcdefg!", true},  // 8 chars, letter + symbol
		{"12345678!", false}, // no letter
		{"Secret1!", true},
	}
	for _, tc := range cases {
		if got := validPassword(tc.password); got != tc.ok {
			t.Fatalf("validPassword(%q) = %v, want %v", tc.password, got, tc.ok)
		}
	}
}

package session

import (
	"context"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
)

// VerifyPayload is the OTP form state for the verify step
type VerifyPayload struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"code" json:"code"`
}

// Validate enforces the fixed-length code gate. Content is not inspected;
// only the provider knows whether the digits are right.
func (p VerifyPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Code, validation.Required, validation.Length(DefaultOTPLength, DefaultOTPLength)),
	)
}

// CanSubmitCode reports whether the verify submit control is enabled: the
// code must be exactly the configured length and no request may be pending.
// Length counts runes, matching the Validate rule.
func (f *RegisterFlow) CanSubmitCode(code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return utf8.RuneCountInString(code) == f.cfg.GetOTPLength() && !f.inFlight
}

// SubmitCode runs the OTP verification cycle for the email captured at the
// registration step. On success the user is noticed and routed to sign-in
// after the configured delay; on failure the machine stays at the verify
// step so the code can be retried.
func (f *RegisterFlow) SubmitCode(ctx context.Context, code string) error {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	email := f.email
	f.mu.Unlock()

	payload := VerifyPayload{Email: email, Code: code}
	if err := payload.Validate(); err != nil {
		f.notifier.Error(err.Error())
		return err
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	f.inFlight = true
	f.mu.Unlock()

	defer f.clearInFlight()

	if err := f.client.VerifyOTP(ctx, email, code); err != nil {
		f.logger.Error("otp verification failed for %s: %v", email, err)
		f.notifier.Error(ProviderDetail(err, "An error occurred during OTP verification"))
		return err
	}

	f.notifier.Success("Email verified! You can sign in now.")

	cancel := f.sched.After(delayDuration(f.cfg.GetVerifyRedirectDelay()), func() {
		f.nav.Navigate(f.cfg.GetSigninRoute())
	})

	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	return nil
}

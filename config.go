package session

import "time"

// Delay getters are expressed in milliseconds, mirroring the timings the
// flows were tuned against (1s login redirect, 2s register/verify steps,
// 1.5s onboarding handoff).
const (
	DefaultStorageKey              = "auth-storage"
	DefaultSigninRoute             = "/signin"
	DefaultHomeRoute               = "/"
	DefaultOnboardingRoute         = "/onboarding"
	DefaultLoginRedirectDelay      = 1000
	DefaultRegisterStepDelay       = 2000
	DefaultVerifyRedirectDelay     = 2000
	DefaultOnboardingRedirectDelay = 1500
	DefaultOTPLength               = 8
)

// Options is a value implementation of Config. The zero value is not usable;
// call NewOptions to get defaults and override fields as needed.
type Options struct {
	StorageKey              string
	SigninRoute             string
	HomeRoute               string
	OnboardingRoute         string
	LoginRedirectDelay      int
	RegisterStepDelay       int
	VerifyRedirectDelay     int
	OnboardingRedirectDelay int
	OTPLength               int
}

// NewOptions returns an Options populated with package defaults
func NewOptions() Options {
	return Options{
		StorageKey:              DefaultStorageKey,
		SigninRoute:             DefaultSigninRoute,
		HomeRoute:               DefaultHomeRoute,
		OnboardingRoute:         DefaultOnboardingRoute,
		LoginRedirectDelay:      DefaultLoginRedirectDelay,
		RegisterStepDelay:       DefaultRegisterStepDelay,
		VerifyRedirectDelay:     DefaultVerifyRedirectDelay,
		OnboardingRedirectDelay: DefaultOnboardingRedirectDelay,
		OTPLength:               DefaultOTPLength,
	}
}

func (o Options) GetStorageKey() string { return o.StorageKey }

func (o Options) GetSigninRoute() string { return o.SigninRoute }

func (o Options) GetHomeRoute() string { return o.HomeRoute }

func (o Options) GetOnboardingRoute() string { return o.OnboardingRoute }

func (o Options) GetLoginRedirectDelay() int { return o.LoginRedirectDelay }

func (o Options) GetRegisterStepDelay() int { return o.RegisterStepDelay }

func (o Options) GetVerifyRedirectDelay() int { return o.VerifyRedirectDelay }

func (o Options) GetOnboardingRedirectDelay() int { return o.OnboardingRedirectDelay }

func (o Options) GetOTPLength() int { return o.OTPLength }

func delayDuration(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

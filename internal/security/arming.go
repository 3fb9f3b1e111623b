// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
)

// =============================================================================
// ORDER-ENTRY ARMING INTERLOCK
// =============================================================================

// DefaultArmWindow bounds how long order entry stays unlocked after one
// valid code.
const DefaultArmWindow = 5 * time.Minute

var (
	// ErrNotEnrolled indicates no TOTP secret is configured.
	ErrNotEnrolled = errors.New("arming not enrolled: no TOTP secret configured")

	// ErrBadArmCode indicates the submitted code failed validation.
	ErrBadArmCode = errors.New("invalid arming code")
)

// EnrollArming provisions a fresh TOTP secret for the order-entry
// interlock. Returns the base32 secret for the vault and the otpauth://
// URI for authenticator apps.
func EnrollArming(account string) (secret, uri string, err error) {
	if strings.TrimSpace(account) == "" {
		account = "trader"
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "tradedeck",
		AccountName: account,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.String(), nil
}

// Interlock gates order submission behind a TOTP code. With no secret
// configured the interlock is disabled and Allow always reports true;
// once enrolled, orders pass only inside an armed window. Safe for
// concurrent use.
type Interlock struct {
	mu         sync.Mutex
	secret     string
	window     time.Duration
	armedUntil time.Time

	now func() time.Time
}

// NewInterlock returns an interlock for the given TOTP secret. An empty
// secret disables the interlock. window <= 0 falls back to
// DefaultArmWindow.
func NewInterlock(secret string, window time.Duration) *Interlock {
	if window <= 0 {
		window = DefaultArmWindow
	}
	return &Interlock{
		secret: strings.TrimSpace(secret),
		window: window,
		now:    time.Now,
	}
}

// Enrolled reports whether a TOTP secret is configured.
func (il *Interlock) Enrolled() bool {
	il.mu.Lock()
	defer il.mu.Unlock()
	return il.secret != ""
}

// SetSecret installs a new TOTP secret and disarms. An empty secret
// unenrolls the interlock.
func (il *Interlock) SetSecret(secret string) {
	il.mu.Lock()
	defer il.mu.Unlock()
	il.secret = strings.TrimSpace(secret)
	il.armedUntil = time.Time{}
}

// Arm validates a TOTP code and opens the armed window.
func (il *Interlock) Arm(code string) error {
	il.mu.Lock()
	defer il.mu.Unlock()

	if il.secret == "" {
		return ErrNotEnrolled
	}
	if !totp.Validate(strings.TrimSpace(code), il.secret) {
		return ErrBadArmCode
	}

	il.armedUntil = il.now().Add(il.window)
	return nil
}

// Armed reports whether an armed window is currently open.
func (il *Interlock) Armed() bool {
	il.mu.Lock()
	defer il.mu.Unlock()
	return il.armedLocked()
}

func (il *Interlock) armedLocked() bool {
	return !il.armedUntil.IsZero() && il.now().Before(il.armedUntil)
}

// Allow reports whether an order may be submitted right now: always true
// when unenrolled, otherwise true only inside an armed window.
func (il *Interlock) Allow() bool {
	il.mu.Lock()
	defer il.mu.Unlock()
	if il.secret == "" {
		return true
	}
	return il.armedLocked()
}

// Remaining returns how long the current armed window stays open, zero
// when disarmed.
func (il *Interlock) Remaining() time.Duration {
	il.mu.Lock()
	defer il.mu.Unlock()
	if !il.armedLocked() {
		return 0
	}
	return il.armedUntil.Sub(il.now())
}

// Disarm closes the armed window immediately.
func (il *Interlock) Disarm() {
	il.mu.Lock()
	defer il.mu.Unlock()
	il.armedUntil = time.Time{}
}

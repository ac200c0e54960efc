package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/bridge"
)

func limiterKey(ref bridge.NoteRef) string {
	return ref.Kind().String() + ":" + ref.Filename + ":"
}

// LockNote encrypts the note into <name>.md.locked and removes the plain file.
func (v *Vault) LockNote(_ context.Context, ref bridge.NoteRef, password string) error {
	p, err := notePath(ref)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("vault: lock note: empty password: %w", apperr.ErrWrongPassword)
	}
	if v.store.Exists(p + lockedExt) {
		return fmt.Errorf("vault: lock note %s: %w", p, apperr.ErrAlreadyLocked)
	}
	data, err := v.store.Read(p)
	if err != nil {
		return fmt.Errorf("vault: lock note: %w", err)
	}
	sealed, err := encrypt(string(data), password)
	if err != nil {
		return err
	}
	if err := v.store.Write(p+lockedExt, []byte(sealed)); err != nil {
		return fmt.Errorf("vault: lock note: %w", err)
	}
	if err := v.store.Delete(p); err != nil {
		return fmt.Errorf("vault: lock note: remove plain copy: %w", err)
	}
	v.logger.Info("note locked", slog.String("path", p))
	return nil
}

// UnlockNote decrypts the note for viewing. The file stays encrypted.
func (v *Vault) UnlockNote(_ context.Context, ref bridge.NoteRef, password string) (string, error) {
	p, err := notePath(ref)
	if err != nil {
		return "", err
	}
	return v.open(ref, p, password)
}

// PermanentlyUnlockNote decrypts the note back into its plain file and
// removes the encrypted copy.
func (v *Vault) PermanentlyUnlockNote(_ context.Context, ref bridge.NoteRef, password string) error {
	p, err := notePath(ref)
	if err != nil {
		return err
	}
	plain, err := v.open(ref, p, password)
	if err != nil {
		return err
	}
	if err := v.store.Write(p, []byte(plain)); err != nil {
		return fmt.Errorf("vault: unlock note: %w", err)
	}
	if err := v.store.Delete(p + lockedExt); err != nil {
		return fmt.Errorf("vault: unlock note: remove encrypted copy: %w", err)
	}
	v.logger.Info("note permanently unlocked", slog.String("path", p))
	return nil
}

// open decrypts p+".locked" under the rate limiter. Wrong passwords yield
// *apperr.PasswordError, lockouts *apperr.RateLimitError.
func (v *Vault) open(ref bridge.NoteRef, p, password string) (string, error) {
	key := limiterKey(ref)
	if verdict := v.limiter.Check(key); !verdict.Allowed {
		return "", &apperr.RateLimitError{RetryAfter: verdict.RetryAfter}
	}
	data, err := v.store.Read(p + lockedExt)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", fmt.Errorf("vault: unlock note %s: %w", p, apperr.ErrNotLocked)
	}
	if err != nil {
		return "", fmt.Errorf("vault: unlock note: %w", err)
	}
	plain, err := decrypt(string(data), password)
	switch {
	case err == nil:
		v.limiter.Succeed(key)
		return plain, nil
	case errors.Is(err, errDecrypt):
		verdict := v.limiter.Fail(key)
		v.logger.Warn("unlock failed", slog.String("path", p), slog.Int("remaining", verdict.Remaining))
		if !verdict.Allowed {
			return "", &apperr.RateLimitError{RetryAfter: verdict.RetryAfter}
		}
		return "", &apperr.PasswordError{Remaining: verdict.Remaining}
	default:
		return "", err
	}
}

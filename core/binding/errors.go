package binding

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("import configuration not found")
	// ErrStoreWrite is matched by every StoreWriteError.
	ErrStoreWrite = errors.New("binding store write rejected")
	// ErrDesync is matched by every DesyncError.
	ErrDesync = errors.New("binding snapshot out of sync with configuration")

	// ErrNotLoaded is returned by engine operations that need a loaded context.
	ErrNotLoaded = errors.New("no configuration loaded")
	// ErrAlreadyLoaded is returned when another engine holds the configuration.
	ErrAlreadyLoaded = errors.New("configuration already loaded by another context")
	// ErrUnknownSlot is returned when editing a key the configuration does not declare.
	ErrUnknownSlot = errors.New("unknown slot")
	// ErrReloadRequired is returned after a failed revert until the context is loaded again.
	ErrReloadRequired = errors.New("context failed, reload required")

	// ErrConfirmationPending is returned when a teardown is attempted while another
	// teardown is waiting for confirmation.
	ErrConfirmationPending = errors.New("confirmation already pending")
	// ErrConfirmationRequired is returned by confirmers that cannot decide.
	ErrConfirmationRequired = errors.New("pending changes need commit or revert")
)

// NotFoundError reports a missing or unreadable import configuration.
type NotFoundError struct {
	AssetPath string
	Err       error
}

func (e *NotFoundError) Error() string {
	if e.AssetPath == "" {
		return ErrNotFound.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrNotFound, e.AssetPath, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrNotFound, e.AssetPath)
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotFound}
	}
	return []error{ErrNotFound, e.Err}
}

// StoreWriteError reports a WriteOne rejected by the persisted store.
type StoreWriteError struct {
	AssetPath string
	Key       BindingKey
	Err       error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s: %s [%s]: %v", ErrStoreWrite, e.AssetPath, e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}

// DesyncError reports a baseline key whose slot no longer exists in the configuration.
type DesyncError struct {
	AssetPath string
	Key       BindingKey
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("%s: %s no longer declares slot %s", ErrDesync, e.AssetPath, e.Key)
}

func (e *DesyncError) Unwrap() error {
	return ErrDesync
}

// FatalError is reported by the guard when a context can no longer be trusted.
// The only recovery is loading the configuration again.
type FatalError struct {
	AssetPath string
	Err       error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("binding context %s failed: %v", e.AssetPath, e.Err)
}

func (e *FatalError) Unwrap() []error {
	return []error{ErrReloadRequired, e.Err}
}

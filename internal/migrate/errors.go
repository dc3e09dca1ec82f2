package migrate

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

type ContextSwitchError struct {
	SubscriptionID string
	Cause          error
}

func (e *ContextSwitchError) Error() string {
	return fmt.Sprintf("cannot switch to subscription '%s': %v", e.SubscriptionID, e.Cause)
}

func (e *ContextSwitchError) Unwrap() error {
	return e.Cause
}

type ProvisionError struct {
	Resource string
	Name     string
	Cause    error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("failed to provision %s '%s': %v", e.Resource, e.Name, e.Cause)
}

func (e *ProvisionError) Unwrap() error {
	return e.Cause
}

type PolicyError struct {
	Vault string
	Cause error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("failed to apply access policy on vault '%s': %v", e.Vault, e.Cause)
}

func (e *PolicyError) Unwrap() error {
	return e.Cause
}

type TagError struct {
	Vault string
	Cause error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("failed to apply tags on vault '%s': %v", e.Vault, e.Cause)
}

func (e *TagError) Unwrap() error {
	return e.Cause
}

type SecretItemError struct {
	Secret string
	Op     string
	Cause  error
}

func (e *SecretItemError) Error() string {
	return fmt.Sprintf("failed to %s secret '%s': %v", e.Op, e.Secret, e.Cause)
}

func (e *SecretItemError) Unwrap() error {
	return e.Cause
}

type SecretEnumerationError struct {
	Vault string
	Cause error
}

func (e *SecretEnumerationError) Error() string {
	return fmt.Sprintf("failed to list secrets in vault '%s': %v", e.Vault, e.Cause)
}

func (e *SecretEnumerationError) Unwrap() error {
	return e.Cause
}

type InventoryError struct {
	Vault string
	Cause error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("failed to inventory keys and certificates in vault '%s': %v", e.Vault, e.Cause)
}

func (e *InventoryError) Unwrap() error {
	return e.Cause
}

type NetworkError struct {
	Network string
	Cause   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to replicate virtual network '%s': %v", e.Network, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

package migrate

import (
	"context"
	"errors"

	"github.com/kvshift/kvshift/internal/message"
)

type VaultProvisioner struct {
	vaults VaultService
	roles  RoleAssignmentService
}

func NewVaultProvisioner(vaults VaultService, roles RoleAssignmentService) *VaultProvisioner {
	return &VaultProvisioner{vaults: vaults, roles: roles}
}

// DefaultPermissions is the permission set granted to the access identity on
// the target vault.
func DefaultPermissions() PermissionSet {
	return PermissionSet{
		Secrets:      []string{"get", "list", "set", "delete"},
		Keys:         []string{"get", "list", "create", "delete"},
		Certificates: []string{"get", "list", "create", "delete"},
	}
}

// EnsureVault attempts creation first and falls back to a fetch-by-name on
// any create failure. Create-then-fetch rather than fetch-then-create: a
// concurrent run racing the create fails cleanly on the name collision and
// recovers through the fetch.
func (p *VaultProvisioner) EnsureVault(ctx context.Context, sw ContextSwitcher, spec EnvironmentSpec) (*VaultRecord, error) {
	target := spec.Target
	if err := sw.SwitchTo(ctx, target.SubscriptionID); err != nil {
		return nil, err
	}
	message.Info("Creating Key Vault: az keyvault create --name %s --resource-group %s --location %s",
		target.KeyVaultName, target.ResourceGroup, target.Location)
	created, createErr := p.vaults.CreateVault(ctx, target.SubscriptionID, target.ResourceGroup, target.KeyVaultName, VaultParams{
		Location: target.Location,
		SKUTier:  target.SKUTier,
	})
	if createErr == nil {
		created.Existed = false
		return created, nil
	}

	message.Debug("Key Vault creation failed (%v), fetching '%s' by name", createErr, target.KeyVaultName)
	if err := sw.SwitchTo(ctx, target.SubscriptionID); err != nil {
		return nil, err
	}
	existing, getErr := p.vaults.GetVault(ctx, target.SubscriptionID, target.ResourceGroup, target.KeyVaultName)
	if getErr != nil {
		return nil, &ProvisionError{Resource: "key vault", Name: target.KeyVaultName, Cause: errors.Join(createErr, getErr)}
	}
	message.Info("Using existing Key Vault: %s", existing.Name)
	existing.Existed = true
	return existing, nil
}

// ApplyAccessPolicy grants perms to objectID on the vault. Legacy vaults get
// their access policy replaced, so re-application with identical arguments is
// a no-op in effect. Vaults running RBAC authorization ignore access policies
// entirely and get a Key Vault Secrets Officer role assignment instead.
func (p *VaultProvisioner) ApplyAccessPolicy(ctx context.Context, sw ContextSwitcher, target TargetSpec, vault *VaultRecord, objectID string, perms PermissionSet) error {
	if err := sw.SwitchTo(ctx, target.SubscriptionID); err != nil {
		return &PolicyError{Vault: vault.Name, Cause: err}
	}
	if vault.RBACAuthorization {
		message.Info("Key Vault '%s' uses RBAC authorization, assigning Key Vault Secrets Officer role to %s", vault.Name, objectID)
		if err := p.roles.EnsureSecretsOfficer(ctx, target.SubscriptionID, vault.ResourceID, objectID); err != nil {
			return &PolicyError{Vault: vault.Name, Cause: err}
		}
		return nil
	}

	message.Info("Updating Key Vault access policy: az keyvault set-policy --name %s --object-id %s", vault.Name, objectID)
	policy := AccessPolicy{
		TenantID:    vault.TenantID,
		ObjectID:    objectID,
		Permissions: perms,
	}
	if err := p.vaults.ReplaceAccessPolicy(ctx, target.SubscriptionID, target.ResourceGroup, vault.Name, policy); err != nil {
		return &PolicyError{Vault: vault.Name, Cause: err}
	}
	return nil
}

// MergeTags is a right-biased union: override wins on key collisions, keys
// only present in existing are preserved.
func MergeTags(existing, override map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(override))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// ApplyTags merges the vault's current tags with the override set and writes
// the result back. The returned map is the merged set actually applied.
func (p *VaultProvisioner) ApplyTags(ctx context.Context, sw ContextSwitcher, target TargetSpec, vault *VaultRecord, override map[string]string) (map[string]string, error) {
	merged := MergeTags(vault.Tags, override)
	if err := sw.SwitchTo(ctx, target.SubscriptionID); err != nil {
		return nil, &TagError{Vault: vault.Name, Cause: err}
	}
	if err := p.vaults.UpdateTags(ctx, target.SubscriptionID, target.ResourceGroup, vault.Name, merged); err != nil {
		return nil, &TagError{Vault: vault.Name, Cause: err}
	}
	vault.Tags = merged
	return merged, nil
}

package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureVaultCreatesOnce(t *testing.T) {
	f := newFixture()
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)

	first, err := provisioner.EnsureVault(context.Background(), sw, testSpec())
	require.NoError(t, err)
	assert.False(t, first.Existed)
	assert.Equal(t, "kv-target", first.Name)

	second, err := provisioner.EnsureVault(context.Background(), sw, testSpec())
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.ResourceID, second.ResourceID)

	assert.Equal(t, []string{"kv-target"}, f.vaults.created)
}

func TestEnsureVaultFailsWhenCreateAndFetchFail(t *testing.T) {
	f := newFixture()
	f.vaults.createErr = errors.New("invalid vault name")
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)

	_, err := provisioner.EnsureVault(context.Background(), sw, testSpec())

	var provisionErr *ProvisionError
	require.ErrorAs(t, err, &provisionErr)
	assert.Equal(t, "key vault", provisionErr.Resource)
	assert.Equal(t, "kv-target", provisionErr.Name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyAccessPolicyLegacyVault(t *testing.T) {
	f := newFixture()
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)
	spec := testSpec()

	vault, err := provisioner.EnsureVault(context.Background(), sw, spec)
	require.NoError(t, err)

	err = provisioner.ApplyAccessPolicy(context.Background(), sw, spec.Target, vault, testObjectID, DefaultPermissions())
	require.NoError(t, err)

	require.Len(t, f.vaults.policies, 1)
	policy := f.vaults.policies[0]
	assert.Equal(t, testTenant, policy.TenantID)
	assert.Equal(t, testObjectID, policy.ObjectID)
	assert.Equal(t, []string{"get", "list", "set", "delete"}, policy.Permissions.Secrets)
	assert.Empty(t, f.roles.assignments)
}

func TestApplyAccessPolicyRBACVault(t *testing.T) {
	f := newFixture()
	f.vaults.rbac = true
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)
	spec := testSpec()

	vault, err := provisioner.EnsureVault(context.Background(), sw, spec)
	require.NoError(t, err)

	err = provisioner.ApplyAccessPolicy(context.Background(), sw, spec.Target, vault, testObjectID, DefaultPermissions())
	require.NoError(t, err)

	assert.Empty(t, f.vaults.policies)
	require.Len(t, f.roles.assignments, 1)
	assert.Equal(t, vault.ResourceID+"|"+testObjectID, f.roles.assignments[0])
}

func TestApplyAccessPolicyWrapsFailures(t *testing.T) {
	f := newFixture()
	f.vaults.replaceErr = errors.New("forbidden")
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)
	spec := testSpec()

	vault, err := provisioner.EnsureVault(context.Background(), sw, spec)
	require.NoError(t, err)

	err = provisioner.ApplyAccessPolicy(context.Background(), sw, spec.Target, vault, testObjectID, DefaultPermissions())

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, "kv-target", policyErr.Vault)
}

func TestMergeTags(t *testing.T) {
	var tests = []struct {
		name     string
		existing map[string]string
		override map[string]string
		expected map[string]string
	}{
		{
			name:     "override wins on collision",
			existing: map[string]string{"env": "dev", "owner": "alice"},
			override: map[string]string{"owner": "platform", "costCenter": "42"},
			expected: map[string]string{"env": "dev", "owner": "platform", "costCenter": "42"},
		},
		{
			name:     "nil existing",
			existing: nil,
			override: map[string]string{"owner": "platform"},
			expected: map[string]string{"owner": "platform"},
		},
		{
			name:     "nil override",
			existing: map[string]string{"env": "dev"},
			override: nil,
			expected: map[string]string{"env": "dev"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MergeTags(tc.existing, tc.override))
		})
	}
}

func TestApplyTagsPreservesExistingTags(t *testing.T) {
	f := newFixture()
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)
	spec := testSpec()

	vault, err := provisioner.EnsureVault(context.Background(), sw, spec)
	require.NoError(t, err)
	vault.Tags = map[string]string{"env": "dev", "owner": "alice"}

	merged, err := provisioner.ApplyTags(context.Background(), sw, spec.Target, vault, map[string]string{"owner": "platform"})
	require.NoError(t, err)

	expected := map[string]string{"env": "dev", "owner": "platform"}
	assert.Equal(t, expected, merged)
	assert.Equal(t, expected, vault.Tags)
	assert.Equal(t, expected, f.vaults.tagsApplied["kv-target"])
}

func TestApplyTagsWrapsFailures(t *testing.T) {
	f := newFixture()
	f.vaults.tagsErr = errors.New("conflict")
	provisioner := NewVaultProvisioner(f.vaults, f.roles)
	sw := NewSubscriptionContext(f.verifier)
	spec := testSpec()

	vault, err := provisioner.EnsureVault(context.Background(), sw, spec)
	require.NoError(t, err)
	vault.Tags = map[string]string{"env": "dev"}

	_, err = provisioner.ApplyTags(context.Background(), sw, spec.Target, vault, map[string]string{"owner": "platform"})

	var tagErr *TagError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, map[string]string{"env": "dev"}, vault.Tags)
}

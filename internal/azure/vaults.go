package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"

	"github.com/kvshift/kvshift/internal/migrate"
	"github.com/kvshift/kvshift/internal/utils"
)

func (p *Provider) vaultsClient(subscriptionID string) (*armkeyvault.VaultsClient, error) {
	client, err := armkeyvault.NewVaultsClient(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vaults client, %w", err)
	}
	return client, nil
}

func (p *Provider) GetVault(ctx context.Context, subscriptionID, resourceGroup, name string) (*migrate.VaultRecord, error) {
	client, err := p.vaultsClient(subscriptionID)
	if err != nil {
		return nil, err
	}
	resp, err := client.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, migrate.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get Key Vault '%s', %w", name, err)
	}
	return vaultRecord(resp.Vault), nil
}

// CreateVault creates the vault, failing cleanly when the name is already
// taken. Key vault names are global, so availability is checked up front: the
// create API itself is an upsert and would silently adopt an existing vault.
func (p *Provider) CreateVault(ctx context.Context, subscriptionID, resourceGroup, name string, params migrate.VaultParams) (*migrate.VaultRecord, error) {
	if p.tenantID == "" {
		return nil, errors.New("tenant id unknown, no session established")
	}
	client, err := p.vaultsClient(subscriptionID)
	if err != nil {
		return nil, err
	}

	check, err := client.CheckNameAvailability(ctx, armkeyvault.VaultCheckNameAvailabilityParameters{
		Name: to.Ptr(name),
		Type: to.Ptr("Microsoft.KeyVault/vaults"),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check Key Vault name availability, %w", err)
	}
	if !utils.DeRefOr(check.NameAvailable, true) {
		if utils.DeRefOr(check.Reason, "") == armkeyvault.ReasonAlreadyExists {
			return nil, fmt.Errorf("key vault name '%s' is taken: %w", name, migrate.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("key vault name '%s' is not available: %s", name, utils.DeRefOr(check.Message, "invalid name"))
	}

	sku := armkeyvault.SKUNameStandard
	if params.SKUTier == migrate.SKUPremium {
		sku = armkeyvault.SKUNamePremium
	}
	poller, err := client.BeginCreateOrUpdate(ctx, resourceGroup, name, armkeyvault.VaultCreateOrUpdateParameters{
		Location: to.Ptr(params.Location),
		Properties: &armkeyvault.VaultProperties{
			TenantID: to.Ptr(p.tenantID),
			SKU: &armkeyvault.SKU{
				Family: to.Ptr(armkeyvault.SKUFamilyA),
				Name:   to.Ptr(sku),
			},
			AccessPolicies: []*armkeyvault.AccessPolicyEntry{},
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin Key Vault creation, %w", err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault '%s', %w", name, err)
	}
	return vaultRecord(resp.Vault), nil
}

func (p *Provider) ReplaceAccessPolicy(ctx context.Context, subscriptionID, resourceGroup, name string, policy migrate.AccessPolicy) error {
	client, err := p.vaultsClient(subscriptionID)
	if err != nil {
		return err
	}
	entry := &armkeyvault.AccessPolicyEntry{
		TenantID: to.Ptr(policy.TenantID),
		ObjectID: to.Ptr(policy.ObjectID),
		Permissions: &armkeyvault.Permissions{
			Secrets:      secretPermissions(policy.Permissions.Secrets),
			Keys:         keyPermissions(policy.Permissions.Keys),
			Certificates: certificatePermissions(policy.Permissions.Certificates),
		},
	}
	_, err = client.UpdateAccessPolicy(ctx, resourceGroup, name, armkeyvault.AccessPolicyUpdateKindReplace, armkeyvault.VaultAccessPolicyParameters{
		Properties: &armkeyvault.VaultAccessPolicyProperties{
			AccessPolicies: []*armkeyvault.AccessPolicyEntry{entry},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to update Key Vault access policy '%s', %w", name, err)
	}
	return nil
}

func (p *Provider) UpdateTags(ctx context.Context, subscriptionID, resourceGroup, name string, tags map[string]string) error {
	client, err := p.vaultsClient(subscriptionID)
	if err != nil {
		return err
	}
	_, err = client.Update(ctx, resourceGroup, name, armkeyvault.VaultPatchParameters{
		Tags: tagMap(tags),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to update Key Vault tags '%s', %w", name, err)
	}
	return nil
}

func vaultRecord(v armkeyvault.Vault) *migrate.VaultRecord {
	record := &migrate.VaultRecord{
		ResourceID: utils.DeRefOr(v.ID, ""),
		Name:       utils.DeRefOr(v.Name, ""),
		Tags:       tagValues(v.Tags),
	}
	if v.Properties != nil {
		record.URI = utils.DeRefOr(v.Properties.VaultURI, "")
		record.TenantID = utils.DeRefOr(v.Properties.TenantID, "")
		record.RBACAuthorization = utils.DeRefOr(v.Properties.EnableRbacAuthorization, false)
	}
	return record
}

func tagMap(in map[string]string) map[string]*string {
	out := make(map[string]*string, len(in))
	for k, v := range in {
		out[k] = to.Ptr(v)
	}
	return out
}

func tagValues(in map[string]*string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = utils.DeRefOr(v, "")
	}
	return out
}

func secretPermissions(perms []string) []*armkeyvault.SecretPermissions {
	out := make([]*armkeyvault.SecretPermissions, 0, len(perms))
	for _, perm := range perms {
		out = append(out, to.Ptr(armkeyvault.SecretPermissions(perm)))
	}
	return out
}

func keyPermissions(perms []string) []*armkeyvault.KeyPermissions {
	out := make([]*armkeyvault.KeyPermissions, 0, len(perms))
	for _, perm := range perms {
		out = append(out, to.Ptr(armkeyvault.KeyPermissions(perm)))
	}
	return out
}

func certificatePermissions(perms []string) []*armkeyvault.CertificatePermissions {
	out := make([]*armkeyvault.CertificatePermissions, 0, len(perms))
	for _, perm := range perms {
		out = append(out, to.Ptr(armkeyvault.CertificatePermissions(perm)))
	}
	return out
}

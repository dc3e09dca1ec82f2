package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/kvshift/kvshift/internal/migrate"
	"github.com/kvshift/kvshift/internal/utils"
)

func (p *Provider) secretsClient(vault migrate.VaultEndpoint) (*azsecrets.Client, error) {
	client, err := azsecrets.NewClient(vaultURI(vault), p.credential, &azsecrets.ClientOptions{
		ClientOptions: p.core,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault secrets client, %w", err)
	}
	return client, nil
}

// vaultURI derives the data-plane endpoint from the vault name when the
// endpoint does not carry one.
func vaultURI(vault migrate.VaultEndpoint) string {
	if vault.URI != "" {
		return vault.URI
	}
	return fmt.Sprintf("https://%s.vault.azure.net/", vault.Name)
}

func (p *Provider) ListSecretNames(ctx context.Context, vault migrate.VaultEndpoint) ([]string, error) {
	client, err := p.secretsClient(vault)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0)
	pager := client.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list secrets in vault '%s', %w", vault.Name, err)
		}
		for _, item := range page.Value {
			if item.ID != nil {
				names = append(names, item.ID.Name())
			}
		}
	}
	return names, nil
}

func (p *Provider) GetSecretValue(ctx context.Context, vault migrate.VaultEndpoint, name string) (migrate.SecretValue, error) {
	client, err := p.secretsClient(vault)
	if err != nil {
		return migrate.SecretValue{}, err
	}
	resp, err := client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return migrate.SecretValue{}, fmt.Errorf("failed to read secret '%s' from vault '%s', %w", name, vault.Name, err)
	}
	return migrate.SecretValue{
		Value:       utils.DeRefOr(resp.Value, ""),
		ContentType: utils.DeRefOr(resp.ContentType, ""),
	}, nil
}

func (p *Provider) SetSecretValue(ctx context.Context, vault migrate.VaultEndpoint, name string, value migrate.SecretValue) error {
	client, err := p.secretsClient(vault)
	if err != nil {
		return err
	}
	params := azsecrets.SetSecretParameters{
		Value: to.Ptr(value.Value),
	}
	if value.ContentType != "" {
		params.ContentType = to.Ptr(value.ContentType)
	}
	if _, err := client.SetSecret(ctx, name, params, nil); err != nil {
		return fmt.Errorf("failed to write secret '%s' to vault '%s', %w", name, vault.Name, err)
	}
	return nil
}

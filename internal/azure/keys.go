package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"

	"github.com/kvshift/kvshift/internal/migrate"
)

// ListKeyNames enumerates key names only. Key material is non-exportable and
// is never read.
func (p *Provider) ListKeyNames(ctx context.Context, vault migrate.VaultEndpoint) ([]string, error) {
	client, err := azkeys.NewClient(vaultURI(vault), p.credential, &azkeys.ClientOptions{
		ClientOptions: p.core,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault keys client, %w", err)
	}
	names := make([]string, 0)
	pager := client.NewListKeyPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys in vault '%s', %w", vault.Name, err)
		}
		for _, item := range page.Value {
			if item.KID != nil {
				names = append(names, item.KID.Name())
			}
		}
	}
	return names, nil
}

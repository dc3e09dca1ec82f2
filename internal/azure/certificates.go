package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"

	"github.com/kvshift/kvshift/internal/migrate"
)

// ListCertificateNames enumerates certificate names only, mirroring the key
// listing: certificates are inventoried for manual migration, not copied.
func (p *Provider) ListCertificateNames(ctx context.Context, vault migrate.VaultEndpoint) ([]string, error) {
	client, err := azcertificates.NewClient(vaultURI(vault), p.credential, &azcertificates.ClientOptions{
		ClientOptions: p.core,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault certificates client, %w", err)
	}
	names := make([]string, 0)
	pager := client.NewListCertificatePropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list certificates in vault '%s', %w", vault.Name, err)
		}
		for _, item := range page.Value {
			if item.ID != nil {
				names = append(names, item.ID.Name())
			}
		}
	}
	return names, nil
}

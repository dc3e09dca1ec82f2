package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/serviceprincipals"

	"github.com/kvshift/kvshift/internal/utils"
)

// ResolveAppObjectID resolves the service principal object id behind an
// application (client) id. Vault access is always granted to the object id,
// never the app id.
func (p *Provider) ResolveAppObjectID(ctx context.Context, appID string) (string, error) {
	grClient, err := msgraphsdk.NewGraphServiceClientWithCredentials(p.credential, []string{"https://graph.microsoft.com/.default"})
	if err != nil {
		return "", fmt.Errorf("failed to create Graph client, %w", err)
	}
	result, err := grClient.ServicePrincipals().Get(ctx, &serviceprincipals.ServicePrincipalsRequestBuilderGetRequestConfiguration{
		QueryParameters: &serviceprincipals.ServicePrincipalsRequestBuilderGetQueryParameters{
			Filter: to.Ptr("appId eq '" + appID + "'"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to query service principals, %w", err)
	}
	if len(result.GetValue()) == 0 {
		return "", fmt.Errorf("no service principal found for app id '%s'", appID)
	}
	objectID := utils.DeRefOr(result.GetValue()[0].GetId(), "")
	if objectID == "" {
		return "", fmt.Errorf("service principal for app id '%s' has no object id", appID)
	}
	return objectID, nil
}

package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/kvshift/kvshift/internal/migrate"
	"github.com/kvshift/kvshift/internal/utils"
)

func (p *Provider) GetGroup(ctx context.Context, subscriptionID, name string) (*migrate.ResourceGroup, error) {
	client, err := armresources.NewResourceGroupsClient(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create Resource Group client, %w", err)
	}
	resp, err := client.Get(ctx, name, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, migrate.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get Resource Group '%s', %w", name, err)
	}
	return &migrate.ResourceGroup{
		Name:     utils.DeRefOr(resp.Name, name),
		Location: utils.DeRefOr(resp.Location, ""),
	}, nil
}

func (p *Provider) CreateGroup(ctx context.Context, subscriptionID, name, location string) (*migrate.ResourceGroup, error) {
	client, err := armresources.NewResourceGroupsClient(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create Resource Group client, %w", err)
	}
	resp, err := client.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Resource Group '%s', %w", name, err)
	}
	return &migrate.ResourceGroup{
		Name:     utils.DeRefOr(resp.Name, name),
		Location: utils.DeRefOr(resp.Location, location),
	}, nil
}

package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"

	"github.com/kvshift/kvshift/internal/migrate"
	"github.com/kvshift/kvshift/internal/utils"
)

func (p *Provider) GetNetwork(ctx context.Context, subscriptionID, resourceGroup, vnetName, subnetName string) (*migrate.NetworkDescriptor, error) {
	vnetClient, err := armnetwork.NewVirtualNetworksClient(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create Virtual Networks client, %w", err)
	}
	vnet, err := vnetClient.Get(ctx, resourceGroup, vnetName, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, migrate.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get Virtual Network '%s', %w", vnetName, err)
	}

	subnetClient, err := armnetwork.NewSubnetsClient(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create Subnets client, %w", err)
	}
	subnet, err := subnetClient.Get(ctx, resourceGroup, vnetName, subnetName, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, migrate.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get Subnet '%s', %w", subnetName, err)
	}
	return networkDescriptor(vnet.VirtualNetwork, subnet.Subnet, vnetName, subnetName), nil
}

// networkDescriptor flattens a virtual network and one of its subnets into
// the replicated shape. A multi-prefix address space is reduced to its first
// prefix.
func networkDescriptor(vnet armnetwork.VirtualNetwork, subnet armnetwork.Subnet, vnetName, subnetName string) *migrate.NetworkDescriptor {
	descriptor := &migrate.NetworkDescriptor{
		Name:       utils.DeRefOr(vnet.Name, vnetName),
		Location:   utils.DeRefOr(vnet.Location, ""),
		SubnetName: utils.DeRefOr(subnet.Name, subnetName),
	}
	if vnet.Properties != nil && vnet.Properties.AddressSpace != nil && len(vnet.Properties.AddressSpace.AddressPrefixes) > 0 {
		descriptor.AddressPrefix = utils.DeRefOr(vnet.Properties.AddressSpace.AddressPrefixes[0], "")
	}
	if subnet.Properties != nil {
		descriptor.SubnetPrefix = utils.DeRefOr(subnet.Properties.AddressPrefix, "")
	}
	return descriptor
}

// CreateNetwork creates the virtual network with a single subnet. It refuses
// to touch an existing network: the caller treats that as a clean failure,
// not something to reconcile.
func (p *Provider) CreateNetwork(ctx context.Context, subscriptionID, resourceGroup string, network migrate.NetworkDescriptor) error {
	client, err := armnetwork.NewVirtualNetworksClient(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return fmt.Errorf("failed to create Virtual Networks client, %w", err)
	}

	_, err = client.Get(ctx, resourceGroup, network.Name, nil)
	if err == nil {
		return fmt.Errorf("virtual network '%s' already exists in resource group '%s': %w", network.Name, resourceGroup, migrate.ErrAlreadyExists)
	}
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to check if Virtual Network exists, %w", err)
	}

	poller, err := client.BeginCreateOrUpdate(ctx, resourceGroup, network.Name, armnetwork.VirtualNetwork{
		Location: to.Ptr(network.Location),
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{
				AddressPrefixes: []*string{to.Ptr(network.AddressPrefix)},
			},
			Subnets: []*armnetwork.Subnet{{
				Name: to.Ptr(network.SubnetName),
				Properties: &armnetwork.SubnetPropertiesFormat{
					AddressPrefix: to.Ptr(network.SubnetPrefix),
				},
			}},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to begin Virtual Network creation, %w", err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to create Virtual Network '%s', %w", network.Name, err)
	}
	return nil
}

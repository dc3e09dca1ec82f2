package migrate

import (
	"context"

	"github.com/kvshift/kvshift/internal/message"
)

type NetworkReplicator struct {
	networks NetworkService
}

func NewNetworkReplicator(networks NetworkService) *NetworkReplicator {
	return &NetworkReplicator{networks: networks}
}

// Replicate reads the declared network segment from the source subscription
// and creates it in the target resource group. Only the first address prefix
// of the source network is carried over, with a single subnet mirroring the
// source subnet's prefix. Not idempotent: an existing target network fails
// with a NetworkError.
func (n *NetworkReplicator) Replicate(ctx context.Context, sw ContextSwitcher, spec EnvironmentSpec) (*NetworkDescriptor, error) {
	if err := sw.SwitchTo(ctx, spec.Source.SubscriptionID); err != nil {
		return nil, &NetworkError{Network: spec.VNet, Cause: err}
	}
	descriptor, err := n.networks.GetNetwork(ctx, spec.Source.SubscriptionID, spec.Source.ResourceGroup, spec.VNet, spec.Subnet)
	if err != nil {
		return nil, &NetworkError{Network: spec.VNet, Cause: err}
	}

	if err := sw.SwitchTo(ctx, spec.Target.SubscriptionID); err != nil {
		return nil, &NetworkError{Network: spec.VNet, Cause: err}
	}
	message.Info("Creating Virtual Network: az network vnet create --name %s --resource-group %s --address-prefix %s",
		descriptor.Name, spec.Target.ResourceGroup, descriptor.AddressPrefix)
	if err := n.networks.CreateNetwork(ctx, spec.Target.SubscriptionID, spec.Target.ResourceGroup, *descriptor); err != nil {
		return nil, &NetworkError{Network: spec.VNet, Cause: err}
	}
	return descriptor, nil
}

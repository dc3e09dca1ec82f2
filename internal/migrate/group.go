package migrate

import (
	"context"
	"errors"

	"github.com/kvshift/kvshift/internal/message"
)

type GroupProvisioner struct {
	groups ResourceGroupService
}

func NewGroupProvisioner(groups ResourceGroupService) *GroupProvisioner {
	return &GroupProvisioner{groups: groups}
}

// Ensure returns the named resource group, creating it when absent. An
// existing group is returned unchanged; a location mismatch is accepted, not
// reconciled.
func (p *GroupProvisioner) Ensure(ctx context.Context, sw ContextSwitcher, subscriptionID, name, location string) (*ResourceGroup, error) {
	if err := sw.SwitchTo(ctx, subscriptionID); err != nil {
		return nil, err
	}
	group, err := p.groups.GetGroup(ctx, subscriptionID, name)
	if err == nil {
		if group.Location != location {
			message.Debug("Resource Group '%s' already exists in '%s', keeping its location", name, group.Location)
		} else {
			message.Debug("Resource Group already exists: %s", name)
		}
		return group, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, &ProvisionError{Resource: "resource group", Name: name, Cause: err}
	}

	message.Info("Creating Resource Group: az group create --name %s --location %s", name, location)
	group, err = p.groups.CreateGroup(ctx, subscriptionID, name, location)
	if err != nil {
		return nil, &ProvisionError{Resource: "resource group", Name: name, Cause: err}
	}
	return group, nil
}

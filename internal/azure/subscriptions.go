package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/kvshift/kvshift/internal/utils"
)

// VerifyAccess checks that the subscription is visible to the active
// credential and not in a terminal state.
func (p *Provider) VerifyAccess(ctx context.Context, subscriptionID string) error {
	client, err := armsubscriptions.NewClient(p.credential, p.armOptions())
	if err != nil {
		return fmt.Errorf("failed to create Subscriptions client, %w", err)
	}
	resp, err := client.Get(ctx, subscriptionID, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("subscription is not visible to the current credentials")
		}
		return fmt.Errorf("failed to get subscription, %w", err)
	}
	state := utils.DeRefOr(resp.State, armsubscriptions.SubscriptionState(""))
	if state == armsubscriptions.SubscriptionStateDisabled || state == armsubscriptions.SubscriptionStateDeleted {
		return fmt.Errorf("subscription is in state '%s'", state)
	}
	return nil
}

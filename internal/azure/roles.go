package azure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/google/uuid"

	"github.com/kvshift/kvshift/internal/message"
)

const keyVaultSecretsOfficerRoleID = "b86a8fe4-44ce-4948-aee5-eccb2c155cd7" // Built-in "Key Vault Secrets Officer" role

// EnsureSecretsOfficer assigns the Key Vault Secrets Officer role to objectID
// on the given scope. Assignments right after a principal is created can fail
// while the directory propagates, so creation is retried for a short window.
func (p *Provider) EnsureSecretsOfficer(ctx context.Context, subscriptionID, scope, objectID string) error {
	clientFactory, err := armauthorization.NewClientFactory(subscriptionID, p.credential, p.armOptions())
	if err != nil {
		return fmt.Errorf("failed to create Azure authorization client, %w", err)
	}
	roleDefinitionID := fmt.Sprintf("/subscriptions/%s/providers/Microsoft.Authorization/roleDefinitions/%s",
		subscriptionID, keyVaultSecretsOfficerRoleID)

	message.Info("Assigning Key Vault Secrets Officer role: az role assignment create --assignee %s --role %s --scope %s",
		objectID, keyVaultSecretsOfficerRoleID, scope)

	return p.createRoleAssignmentWithRetries(ctx, clientFactory.NewRoleAssignmentsClient(), scope, armauthorization.RoleAssignmentProperties{
		PrincipalID:      to.Ptr(objectID),
		RoleDefinitionID: to.Ptr(roleDefinitionID),
		PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
	}, 30*time.Second)
}

func (p *Provider) createRoleAssignment(ctx context.Context,
	azClient *armauthorization.RoleAssignmentsClient, scope string, properties armauthorization.RoleAssignmentProperties) error {

	roleAssignmentName := uuid.New().String()
	resp, err := azClient.
		Create(ctx, scope, roleAssignmentName, armauthorization.RoleAssignmentCreateParameters{
			Properties: &properties,
		}, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "RoleAssignmentExists" {
			message.Info("Role Assignment already exists")
		} else {
			return fmt.Errorf("failed to create Role Assignment, %w", err)
		}
	} else {
		message.Info("Role Assignment created: %s", *resp.Name)
	}
	return nil
}

func (p *Provider) createRoleAssignmentWithRetries(ctx context.Context,
	azClient *armauthorization.RoleAssignmentsClient, scope string, properties armauthorization.RoleAssignmentProperties,
	timeout time.Duration) error {

	timeoutAfter := time.After(timeout)
	ticker := time.NewTicker(5 * time.Second)
	tick := ticker.C
	defer ticker.Stop()

	var err error
	for loop := true; loop; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeoutAfter:
			return fmt.Errorf("error creating role assignment (retry timeout exceeded), %w", err)
		case <-tick:
			if err = p.createRoleAssignment(ctx, azClient, scope, properties); err != nil {
				message.Debug("error creating role assignment, retrying")
				continue
			}
			loop = false
		}
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "environments": [
    {
      "name": "staging",
      "source": {
        "subscriptionId": "11111111-1111-1111-1111-111111111111",
        "resourceGroup": "rg-source",
        "keyVaultName": "kv-source"
      },
      "target": {
        "subscriptionId": "22222222-2222-2222-2222-222222222222",
        "resourceGroup": "rg-target",
        "location": "westeurope",
        "keyVaultName": "kv-target"
      },
      "accessObjectId": "33333333-3333-3333-3333-333333333333"
    }
  ]
}`

const yamlConfig = `environments:
  - name: staging
    source:
      subscriptionId: 11111111-1111-1111-1111-111111111111
      resourceGroup: rg-source
      keyVaultName: kv-source
    target:
      subscriptionId: 22222222-2222-2222-2222-222222222222
      resourceGroup: rg-target
      location: westeurope
      skuTier: premium
      keyVaultName: kv-target
    tags:
      owner: platform
    vnet: vnet-app
    subnet: default
    accessObjectId: 33333333-3333-3333-3333-333333333333
  - name: production
    source:
      subscriptionId: 11111111-1111-1111-1111-111111111111
      resourceGroup: rg-source
      keyVaultName: kv-source
    target:
      subscriptionId: 22222222-2222-2222-2222-222222222222
      resourceGroup: rg-target
      location: westeurope
      keyVaultName: kv-prod
    principal:
      appId: app-123
      tenant: 72f988bf-86f1-41af-91ab-2d7cd011db47
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadJSON(t *testing.T) {
	file, err := Load(writeConfig(t, "environments.json", jsonConfig))

	require.NoError(t, err)
	require.Len(t, file.Environments, 1)
	env := file.Environments[0]
	assert.Equal(t, "staging", env.Name)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", env.Source.SubscriptionID)
	assert.Equal(t, "kv-target", env.Target.KeyVaultName)
	assert.Equal(t, "33333333-3333-3333-3333-333333333333", env.AccessObjectID)
	assert.False(t, env.ReplicatesNetwork())
}

func TestLoadYAML(t *testing.T) {
	file, err := Load(writeConfig(t, "environments.yaml", yamlConfig))

	require.NoError(t, err)
	require.Len(t, file.Environments, 2)

	staging := file.Environments[0]
	assert.Equal(t, "premium", staging.Target.SKUTier)
	assert.Equal(t, map[string]string{"owner": "platform"}, staging.Tags)
	assert.True(t, staging.ReplicatesNetwork())

	production := file.Environments[1]
	require.NotNil(t, production.Principal)
	assert.Equal(t, "app-123", production.Principal.AppID)
	assert.Empty(t, production.Principal.Secret)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	broken := strings.Replace(jsonConfig, `"keyVaultName": "kv-target"`, `"keyVaultName": "-bad-"`, 1)

	_, err := Load(writeConfig(t, "environments.json", broken))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment 0 ('staging') is invalid")
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	duplicated := strings.Replace(yamlConfig, "name: production", "name: staging", 1)

	_, err := Load(writeConfig(t, "environments.yaml", duplicated))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestLoadRejectsEmptyEnvironmentList(t *testing.T) {
	_, err := Load(writeConfig(t, "environments.json", `{"environments": []}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares no environments")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestNamesAndEnvironmentLookup(t *testing.T) {
	file, err := Load(writeConfig(t, "environments.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"staging", "production"}, file.Names())

	env, err := file.Environment("production")
	require.NoError(t, err)
	assert.Equal(t, "kv-prod", env.Target.KeyVaultName)

	_, err = file.Environment("absent")
	assert.Error(t, err)
}

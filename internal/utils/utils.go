package utils

import (
	"regexp"
)

var (
	vaultNameRegex     = regexp.MustCompile(`^[a-zA-Z](?:-?[a-zA-Z0-9]){2,23}$`)
	resourceGroupRegex = regexp.MustCompile(`^[-\w().]{0,89}[-\w()]$`)
)

func DeRefOr[k any](input *k, def k) k {
	if input == nil {
		return def
	}
	return *input
}

// IsValidVaultName reports whether name satisfies the Key Vault naming rules:
// 3-24 characters, alphanumerics and hyphens, starts with a letter, ends with
// a letter or digit, no consecutive hyphens.
func IsValidVaultName(name string) bool {
	return vaultNameRegex.MatchString(name)
}

func IsValidResourceGroupName(name string) bool {
	return resourceGroupRegex.MatchString(name)
}

package githubapi

import (
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	ownerTypeUserConstant              OwnerType = "user"
	ownerTypeOrganizationConstant      OwnerType = "org"
	ownerTypeEmptyErrorMessageConstant           = "owner type must be provided"
	ownerTypeInvalidTemplateConstant             = "owner type %q is not supported"
)

// OwnerType enumerates supported repository owner scopes.
type OwnerType string

// UserOwnerType identifies repositories owned by a GitHub user.
const UserOwnerType OwnerType = ownerTypeUserConstant

// OrganizationOwnerType identifies repositories owned by a GitHub organization.
const OrganizationOwnerType OwnerType = ownerTypeOrganizationConstant

// ParseOwnerType normalizes textual owner type values.
func ParseOwnerType(ownerTypeValue string) (OwnerType, error) {
	trimmedValue := strings.TrimSpace(ownerTypeValue)
	if len(trimmedValue) == 0 {
		return "", errors.New(ownerTypeEmptyErrorMessageConstant)
	}

	switch OwnerType(strings.ToLower(trimmedValue)) {
	case UserOwnerType:
		return UserOwnerType, nil
	case OrganizationOwnerType:
		return OrganizationOwnerType, nil
	default:
		return "", errors.Newf(ownerTypeInvalidTemplateConstant, ownerTypeValue)
	}
}

// String returns the textual owner type.
func (ownerType OwnerType) String() string {
	return string(ownerType)
}

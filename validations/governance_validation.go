package validations

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/govtwool/govtwool-backend/domains/governance"
	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var stakeAddressPattern = regexp.MustCompile(`^stake(_test)?1[02-9ac-hj-np-z]+$`)

// PageRequest is a 1-based page of a list endpoint.
type PageRequest struct {
	Page  int
	Count int
}

func ValidatePage(ctx context.Context, request PageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Page, validation.Min(1)),
		validation.Field(&request.Count, validation.Min(1), validation.Max(MaxPageSize)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateDRepsQuery(ctx context.Context, request governance.DRepsQuery) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Page, validation.Min(1)),
		validation.Field(&request.Count, validation.Min(1), validation.Max(MaxPageSize)),
		validation.Field(&request.Status, validation.In(
			governance.DRepStatusActive,
			governance.DRepStatusInactive,
			governance.DRepStatusRetired,
		)),
		validation.Field(&request.Search, validation.Length(0, 128)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateIdentifier(ctx context.Context, name, id string) error {
	err := validation.ValidateWithContext(ctx, id, validation.Required, validation.Length(1, 256))
	if err != nil {
		return pkgError.ValidationError(name + ": " + err.Error())
	}
	return nil
}

func ValidateStakeAddress(ctx context.Context, address string) error {
	err := validation.ValidateWithContext(ctx, address,
		validation.Required,
		validation.Match(stakeAddressPattern).Error("must be a bech32 stake address"),
	)
	if err != nil {
		return pkgError.ValidationError("stake_address: " + err.Error())
	}
	return nil
}

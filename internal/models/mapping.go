package models

import apierrors "github.com/helixtrack/core/internal/errors"

func validatePair(b *Base, entity, sourceField, source, targetField, target string) error {
	if err := b.validateBase(entity); err != nil {
		return err
	}
	if err := requireID(entity, sourceField, source); err != nil {
		return err
	}
	if err := requireID(entity, targetField, target); err != nil {
		return err
	}
	return nil
}

func validateRefs(b *Base, entity string, fields ...string) error {
	if err := b.validateBase(entity); err != nil {
		return err
	}
	if len(fields)%2 != 0 {
		return apierrors.NewValidationError(entity, "fields", "unbalanced field list")
	}
	for i := 0; i < len(fields); i += 2 {
		if err := requireID(entity, fields[i], fields[i+1]); err != nil {
			return err
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	StatusPolicyStrict     = "strict"
	StatusPolicyPermissive = "permissive"
)

// Validate reports settings the process cannot start without.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("ENV JWT_SECRET is required"))
	}

	switch c.StorageDriver {
	case StorageMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("ENV MONGO_URI is required when STORAGE_DRIVER=mongo"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.Order.StatusPolicy {
	case StatusPolicyStrict, StatusPolicyPermissive:
	default:
		errs = append(errs, fmt.Errorf("unknown ORDER_STATUS_POLICY %q", c.Order.StatusPolicy))
	}

	return errors.Join(errs...)
}

// PaymentSandbox reports whether webhook signatures may be skipped.
func (c Config) PaymentSandbox() bool {
	return c.Payment.Mode == "sandbox" || c.Payment.Mode == "dev"
}

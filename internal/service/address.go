package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/lock"
	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type AddressInput struct {
	Description string
	City        string
	Street      string
	District    string
	PostalCode  string
	Phone       string
	Notes       string
	IsDefault   bool
}

func (in AddressInput) normalized() AddressInput {
	in.Description = strings.TrimSpace(in.Description)
	in.City = strings.TrimSpace(in.City)
	in.Street = strings.TrimSpace(in.Street)
	in.District = strings.TrimSpace(in.District)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

func (in AddressInput) validate() error {
	fe := fieldErrors{}
	fe.require("description", in.Description)
	fe.require("city", in.City)
	fe.require("street", in.Street)
	fe.require("district", in.District)
	return fe.err("invalid address")
}

// AddressService owns the per-user address book. Every step that touches
// the isDefault flag of more than one address runs under the user's lock.
type AddressService struct {
	addresses store.AddressStore
	locker    lock.Locker
	log       *zap.Logger
}

func NewAddressService(addresses store.AddressStore, locker lock.Locker, log *zap.Logger) *AddressService {
	return &AddressService{addresses: addresses, locker: locker, log: log}
}

func defaultLockKey(userID primitive.ObjectID) string {
	return "address-default:" + userID.Hex()
}

func (s *AddressService) withDefaultLock(ctx context.Context, userID primitive.ObjectID, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, defaultLockKey(userID))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (s *AddressService) Create(ctx context.Context, userID primitive.ObjectID, in AddressInput) (models.Address, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Address{}, err
	}

	now := time.Now()
	address := models.Address{
		UserID:      userID,
		Description: in.Description,
		City:        in.City,
		Street:      in.Street,
		District:    in.District,
		PostalCode:  in.PostalCode,
		Phone:       in.Phone,
		Notes:       in.Notes,
		IsDefault:   in.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	create := func() error {
		if address.IsDefault {
			if err := s.addresses.ClearDefault(ctx, userID, primitive.NilObjectID); err != nil {
				return err
			}
		}
		return s.addresses.Create(ctx, &address)
	}

	var err error
	if address.IsDefault {
		err = s.withDefaultLock(ctx, userID, create)
	} else {
		err = create()
	}
	if err != nil {
		s.log.Error("create address failed", zap.String("userId", userID.Hex()), zap.Error(err))
		return models.Address{}, err
	}

	s.log.Info("address created", zap.String("userId", userID.Hex()), zap.String("addressId", address.ID.Hex()))
	return address, nil
}

func (s *AddressService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *AddressService) Update(ctx context.Context, userID, addressID primitive.ObjectID, in AddressInput) (models.Address, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Address{}, err
	}

	var updated models.Address
	update := func() error {
		existing, err := s.addresses.Get(ctx, userID, addressID)
		if err != nil {
			return storeErr("address", err)
		}
		if in.IsDefault {
			if err := s.addresses.ClearDefault(ctx, userID, addressID); err != nil {
				return err
			}
		}

		existing.Description = in.Description
		existing.City = in.City
		existing.Street = in.Street
		existing.District = in.District
		existing.PostalCode = in.PostalCode
		existing.Phone = in.Phone
		existing.Notes = in.Notes
		existing.IsDefault = in.IsDefault
		existing.UpdatedAt = time.Now()
		if err := s.addresses.Update(ctx, &existing); err != nil {
			return storeErr("address", err)
		}
		updated = existing
		return nil
	}

	var err error
	if in.IsDefault {
		err = s.withDefaultLock(ctx, userID, update)
	} else {
		err = update()
	}
	if err != nil {
		return models.Address{}, err
	}
	return updated, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, addressID primitive.ObjectID) error {
	if err := s.addresses.Delete(ctx, userID, addressID); err != nil {
		return storeErr("address", err)
	}
	s.log.Info("address deleted", zap.String("userId", userID.Hex()), zap.String("addressId", addressID.Hex()))
	return nil
}

// SetDefault clears every default of the user and then marks addressID.
func (s *AddressService) SetDefault(ctx context.Context, userID, addressID primitive.ObjectID) (models.Address, error) {
	var address models.Address
	err := s.withDefaultLock(ctx, userID, func() error {
		if _, err := s.addresses.Get(ctx, userID, addressID); err != nil {
			return storeErr("address", err)
		}
		if err := s.addresses.ClearDefault(ctx, userID, primitive.NilObjectID); err != nil {
			return err
		}
		if err := s.addresses.MarkDefault(ctx, userID, addressID); err != nil {
			return storeErr("address", err)
		}
		var err error
		address, err = s.addresses.Get(ctx, userID, addressID)
		return storeErr("address", err)
	})
	if err != nil {
		return models.Address{}, err
	}
	return address, nil
}

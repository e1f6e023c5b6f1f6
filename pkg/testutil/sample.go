package testutil

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/repository"
)

// SampleUser creates a user with randomized fields. Non-zero fields of init
// overwrite the sample before it is stored.
func SampleUser(ctx context.Context, init *entity.User) (entity.User, error) {
	userRepo := repository.NewUserRepository()

	sample := &entity.User{
		Base:  entity.Base{ID: uuid.NewString()},
		Name:  uuid.NewString(),
		Role:  entity.UserRole,
		Level: entity.LevelHobbyist,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := userRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

// SampleRaffle creates an active raffle with randomized fields. Non-zero
// fields of init overwrite the sample before it is stored.
func SampleRaffle(ctx context.Context, init *entity.Raffle) (entity.Raffle, error) {
	raffleRepo := repository.NewRaffleRepository()

	sample := &entity.Raffle{
		Base:          entity.Base{ID: uuid.NewString()},
		Title:         uuid.NewString(),
		SneakerSKU:    uuid.NewString(),
		RetailPrice:   190,
		Status:        entity.RaffleActive,
		RequiredLevel: entity.LevelHobbyist,
		XPReward:      100,
		CycleState:    entity.CycleOpen,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := raffleRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if overwriteField.Interface() != reflect.Zero(overwriteField.Type()).Interface() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}

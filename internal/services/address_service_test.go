package services_test

import (
	"testing"

	"unishopper/internal/models"
	"unishopper/internal/repositories"
	"unishopper/internal/services"

	"github.com/stretchr/testify/assert"
)

func newAddressService() (*services.AddressService, *repositories.MockAddressRepository) {
	repo := repositories.NewMockAddressRepository()
	return services.NewAddressService(repo), repo
}

func TestAddressService_FirstAddressBecomesDefault(t *testing.T) {
	service, _ := newAddressService()

	addr := &models.Address{Label: "Home", Name: "Rahim", City: "Dhaka"}
	assert.NoError(t, service.CreateAddress("user-1", addr))
	assert.True(t, addr.IsDefault)

	// A second address does not steal the default.
	second := &models.Address{Label: "Office", Name: "Rahim", City: "Dhaka"}
	assert.NoError(t, service.CreateAddress("user-1", second))
	assert.False(t, second.IsDefault)

	list, err := service.ListAddresses("user-1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, "Home", list[0].Label)
}

func TestAddressService_CreateDefaultUnsetsPrevious(t *testing.T) {
	service, _ := newAddressService()

	first := &models.Address{Label: "Home"}
	assert.NoError(t, service.CreateAddress("user-1", first))

	second := &models.Address{Label: "Office", IsDefault: true}
	assert.NoError(t, service.CreateAddress("user-1", second))

	list, _ := service.ListAddresses("user-1")
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			assert.Equal(t, "Office", a.Label)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestAddressService_DeleteDefaultRejected(t *testing.T) {
	service, _ := newAddressService()

	addr := &models.Address{Label: "Home"}
	assert.NoError(t, service.CreateAddress("user-1", addr))

	err := service.DeleteAddress("user-1", addr.ID)
	assert.ErrorIs(t, err, services.ErrDefaultAddressDelete)

	list, _ := service.ListAddresses("user-1")
	assert.Len(t, list, 1)
}

func TestAddressService_DeleteNonDefault(t *testing.T) {
	service, _ := newAddressService()

	home := &models.Address{Label: "Home"}
	office := &models.Address{Label: "Office"}
	assert.NoError(t, service.CreateAddress("user-1", home))
	assert.NoError(t, service.CreateAddress("user-1", office))

	assert.NoError(t, service.DeleteAddress("user-1", office.ID))

	list, _ := service.ListAddresses("user-1")
	assert.Len(t, list, 1)
	assert.Equal(t, "Home", list[0].Label)
}

func TestAddressService_OwnershipEnforced(t *testing.T) {
	service, _ := newAddressService()

	addr := &models.Address{Label: "Home"}
	assert.NoError(t, service.CreateAddress("user-1", addr))

	assert.ErrorIs(t, service.DeleteAddress("user-2", addr.ID), services.ErrForbidden)
	assert.ErrorIs(t, service.SetDefaultAddress("user-2", addr.ID), services.ErrForbidden)

	other := *addr
	other.Label = "Hijacked"
	assert.ErrorIs(t, service.UpdateAddress("user-2", &other), services.ErrForbidden)
}

func TestAddressService_SetDefaultMoves(t *testing.T) {
	service, _ := newAddressService()

	home := &models.Address{Label: "Home"}
	office := &models.Address{Label: "Office"}
	assert.NoError(t, service.CreateAddress("user-1", home))
	assert.NoError(t, service.CreateAddress("user-1", office))

	assert.NoError(t, service.SetDefaultAddress("user-1", office.ID))

	list, _ := service.ListAddresses("user-1")
	assert.Equal(t, "Office", list[0].Label)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	// The old default is deletable now.
	assert.NoError(t, service.DeleteAddress("user-1", home.ID))
}

func TestAddressService_UpdatePreservesDefaultFlag(t *testing.T) {
	service, _ := newAddressService()

	addr := &models.Address{Label: "Home"}
	assert.NoError(t, service.CreateAddress("user-1", addr))

	edited := *addr
	edited.Label = "Home 2"
	edited.IsDefault = false // Clients cannot clear the flag through update.
	assert.NoError(t, service.UpdateAddress("user-1", &edited))

	list, _ := service.ListAddresses("user-1")
	assert.Equal(t, "Home 2", list[0].Label)
	assert.True(t, list[0].IsDefault)
}

package helpers

import (
	"testing"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSimple(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		cfg := model.DIDConfig{
			Type:          model.DIDMethodJWK,
			SigningKeyPEM: "signing.pem",
		}
		assert.NoError(t, CheckSimple(cfg))
	})

	t.Run("missing required field fails as BadFormatReceived", func(t *testing.T) {
		hosts := model.Hosts{}
		err := CheckSimple(hosts)
		require.Error(t, err)
		assert.Equal(t, apierror.BadFormatReceived, apierror.KindOf(err))
	})
}

func TestNewValidatorUsesJSONTagNames(t *testing.T) {
	validate, err := NewValidator()
	require.NoError(t, err)

	type sample struct {
		Renamed string `json:"renamed_field" validate:"required"`
	}
	err = validate.Struct(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renamed_field")
}

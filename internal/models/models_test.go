package models_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/geosheet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinates_Validate(t *testing.T) {
	tests := []struct {
		name    string
		coords  models.Coordinates
		wantErr bool
	}{
		{name: "null island", coords: models.Coordinates{}},
		{name: "sao paulo", coords: models.Coordinates{Latitude: -23.5613, Longitude: -46.6563}},
		{name: "poles and antimeridian", coords: models.Coordinates{Latitude: 90, Longitude: -180}},
		{name: "latitude too big", coords: models.Coordinates{Latitude: 90.0001}, wantErr: true},
		{name: "longitude too small", coords: models.Coordinates{Longitude: -180.5}, wantErr: true},
		{name: "nan", coords: models.Coordinates{Latitude: math.NaN()}, wantErr: true},
		{name: "inf", coords: models.Coordinates{Longitude: math.Inf(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coords.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResolution_Found(t *testing.T) {
	assert.False(t, models.Resolution{}.Found())

	res := models.Found(models.Coordinates{}, "nominatim")
	assert.True(t, res.Found(), "(0,0) is a valid answer")
	assert.Equal(t, "nominatim", res.Provider)
}

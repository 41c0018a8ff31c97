package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, 100.0, cfg.Checkin.GeofenceRadiusMeters)
	assert.Equal(t, 10*time.Minute, cfg.Checkin.TokenTTL)
	assert.Equal(t, 10, cfg.Penalty.NoShowPoints)
	assert.Equal(t, "ko", cfg.I18n.DefaultLocale)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHECKIN_GEOFENCE_RADIUS_METERS", "150")
	t.Setenv("PENALTY_NO_SHOW_POINTS", "5")

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(replacer())
	v.AutomaticEnv()
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.Checkin.GeofenceRadiusMeters)
	assert.Equal(t, 5, cfg.Penalty.NoShowPoints)
}

func TestValidateRejectsDevSecretsInProduction(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("server.env", "production")
	_, err := fromViper(v)
	require.Error(t, err)

	v.Set("jwt.access_secret", "prod-access")
	v.Set("checkin.token_secret", "prod-checkin")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidateRejectsNonPositiveRadius(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("checkin.geofence_radius_meters", 0)
	_, err := fromViper(v)
	require.Error(t, err)
}

package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"migrate", "seed"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("database-url"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://env:pw@envhost:3306/envdb")
	t.Setenv("LOG_LEVEL", "info")

	v := viper.New()
	v.Set("database-url", "mysql://flag:pw@flaghost:3306/flagdb")
	v.Set("log-level", "debug")

	cfg, err := loadConfig(v)

	require.NoError(t, err)
	assert.Equal(t, "mysql://flag:pw@flaghost:3306/flagdb", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_EnvWhenNoFlags(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://env:pw@envhost:3306/envdb")

	cfg, err := loadConfig(viper.New())

	require.NoError(t, err)
	assert.Equal(t, "mysql://env:pw@envhost:3306/envdb", cfg.Database.URL)
}

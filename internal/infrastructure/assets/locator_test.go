package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"keygate/internal/shared/config"
	"keygate/internal/shared/logger"
)

func TestLocator_Resolve(t *testing.T) {
	locator := NewLocator(&config.AssetsConfig{
		Default: "https://assets.example.com/loader.lua",
		Catalog: map[string]string{
			"Loader":  "https://assets.example.com/loader.lua",
			"premium": "https://assets.example.com/premium.lua",
		},
	}, logger.NewLogger())

	t.Run("empty name resolves to default", func(t *testing.T) {
		ref, ok := locator.Resolve("")
		assert.True(t, ok)
		assert.Equal(t, "https://assets.example.com/loader.lua", ref)
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		ref, ok := locator.Resolve("LOADER")
		assert.True(t, ok)
		assert.Equal(t, "https://assets.example.com/loader.lua", ref)
	})

	t.Run("unknown asset reports false", func(t *testing.T) {
		_, ok := locator.Resolve("missing")
		assert.False(t, ok)
	})

	t.Run("no default means empty name fails", func(t *testing.T) {
		bare := NewLocator(&config.AssetsConfig{}, logger.NewLogger())
		_, ok := bare.Resolve("")
		assert.False(t, ok)
	})
}

package corpuscrawl_test

import (
	"testing"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *corpuscrawl.Config {
	return &corpuscrawl.Config{
		BaseURL: "https://example.com/docs/",
		OutDir:  "out",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid minimal config", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing base URL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.BaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, corpuscrawl.EINVALID, corpuscrawl.ErrorCode(err))
	})

	t.Run("non-http scheme rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.BaseURL = "ftp://example.com/docs/"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, corpuscrawl.EINVALID, corpuscrawl.ErrorCode(err))
	})

	t.Run("missing output directory", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.OutDir = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, corpuscrawl.EINVALID, corpuscrawl.ErrorCode(err))
	})

	t.Run("negative chunk size rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ChunkSize = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative min chars rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MinChars = -10
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown dedup key mode rejected", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.DedupKeyMode = "url"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, corpuscrawl.EINVALID, corpuscrawl.ErrorCode(err))
	})

	t.Run("known dedup key modes accepted", func(t *testing.T) {
		t.Parallel()
		for _, mode := range []corpuscrawl.KeyMode{corpuscrawl.KeyContent, corpuscrawl.KeyURLContent} {
			cfg := validConfig()
			cfg.DedupKeyMode = mode
			assert.NoError(t, cfg.Validate())
		}
	})
}

func TestParseKeyMode(t *testing.T) {
	t.Parallel()

	mode, err := corpuscrawl.ParseKeyMode("content")
	require.NoError(t, err)
	assert.Equal(t, corpuscrawl.KeyContent, mode)

	mode, err = corpuscrawl.ParseKeyMode("url+content")
	require.NoError(t, err)
	assert.Equal(t, corpuscrawl.KeyURLContent, mode)

	_, err = corpuscrawl.ParseKeyMode("bogus")
	require.Error(t, err)
	assert.Equal(t, corpuscrawl.EINVALID, corpuscrawl.ErrorCode(err))
}

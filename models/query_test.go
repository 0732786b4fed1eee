package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSearchOptions(t *testing.T) {
	opts := DefaultSearchOptions()

	assert.True(t, opts.Decompose)
	assert.True(t, opts.Verify)
	assert.True(t, opts.Classify)
	assert.False(t, opts.Stream)
	assert.Equal(t, 10, opts.MaxResults)
	assert.Equal(t, 30.0, opts.TimeoutSeconds)
	assert.Nil(t, opts.RecencyFilter)
	assert.Empty(t, opts.Adapters)
}

func TestDefaultSearchContext(t *testing.T) {
	ctx := DefaultSearchContext()

	assert.Equal(t, "en", ctx.Language)
	assert.Nil(t, ctx.UserDomain)
	assert.Empty(t, ctx.PreferredSources)
	assert.Empty(t, ctx.ExcludedSources)
}

func TestMaxBatchQueries(t *testing.T) {
	assert.Equal(t, 20, MaxBatchQueries)
}

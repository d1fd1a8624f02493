package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeFilter(t *testing.T) {
	ref := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	after, onOrBefore, err := ageFilter("30-39", ref)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "1986-10-16", *after, "a runner turning 40 today has left the bucket")
	assert.Equal(t, "1996-10-16", *onOrBefore, "a runner turning 30 today has joined it")

	after, onOrBefore, err = ageFilter("60+", ref)
	require.NoError(t, err)
	assert.Nil(t, after)
	assert.Equal(t, "1966-10-16", *onOrBefore)

	_, _, err = ageFilter("70-79", ref)
	assert.Error(t, err)
}

func TestBuildFilter(t *testing.T) {
	ref := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	f, err := buildFilter("", "", ref)
	require.NoError(t, err)
	assert.Nil(t, f.Gender)
	assert.Nil(t, f.BornAfter)
	assert.Nil(t, f.BornOnOrBefore)

	f, err = buildFilter("female", "18-29", ref)
	require.NoError(t, err)
	assert.Equal(t, "female", *f.Gender)
	assert.Equal(t, "1996-10-16", *f.BornAfter)
	assert.Equal(t, "2008-10-16", *f.BornOnOrBefore)
}

package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerNoFailures(t *testing.T) {
	var c Checker
	c.Required("title", "Flu shots")
	c.RequiredTime("start_at", time.Now())
	c.OneOf("category", "medicine", "medicine", "supplies")
	assert.NoError(t, c.Err())
}

func TestCheckerCollectsFields(t *testing.T) {
	var c Checker
	c.Required("title", "   ")
	c.RequiredTime("start_at", time.Time{})
	c.OneOf("category", "snacks", "medicine", "supplies")
	c.Check(false, "title", "too short")

	err := c.Err()
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, []string{"This field is required.", "too short"}, verr.Fields["title"])
	assert.Contains(t, err.Error(), "category:")
	assert.Contains(t, err.Error(), "start_at: This field is required.")
}

package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKeys(t *testing.T) {
	assert.Equal(t, "festival:events:detail:uuid:abc", BuildEventDetailKey("abc"))
	assert.Equal(t, "festival:events:genres:type:3", BuildEventGenresKey(3))
	assert.Equal(t, "festival:hosts:hall:uuid:h1", BuildHostHallKey("h1"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("USER"))
	assert.True(t, IsValidRole("ORGANIZER"))
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("user"))
}

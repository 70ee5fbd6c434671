package tickets

import (
	"testing"

	"festivaltickets/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"AVAILABLE", StatusAvailable},
		{"sold", StatusSold},
		{" Out_Of_Date ", StatusOutOfDate},
		{"purchased", StatusSold},
		{"HOLD", StatusHold},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("RESERVED")
	assert.ErrorIs(t, err, apperrors.ErrRequiredDataNotFound)
}

func TestStatus_Persistable(t *testing.T) {
	assert.True(t, StatusAvailable.Persistable())
	assert.True(t, StatusSold.Persistable())
	assert.True(t, StatusOutOfDate.Persistable())
	assert.False(t, StatusHold.Persistable())
	assert.False(t, Status("BLOCKED").Persistable())
}

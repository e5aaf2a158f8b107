package task

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"classification", Classification, false},
		{"Regression", Regression, false},
		{"  REGRESSION ", Regression, false},
		{"clustering", Unknown, true},
		{"", Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTask))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentify(t *testing.T) {
	binary := []string{"1", "0", "1", "", "0"}
	assert.Equal(t, Classification, Identify(binary, 0))

	var many []string
	for i := 0; i < 12; i++ {
		many = append(many, strconv.Itoa(i))
	}
	assert.Equal(t, Regression, Identify(many, 0))

	// exactly nine distinct values stays below the default threshold
	assert.Equal(t, Classification, Identify(many[:9], 0))
	assert.Equal(t, Regression, Identify(many[:10], 0))
	assert.Equal(t, Regression, Identify(many[:3], 3))
}

func TestTextRoundTrip(t *testing.T) {
	b, err := Regression.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "regression", string(b))

	var got Type
	require.NoError(t, got.UnmarshalText([]byte("classification")))
	assert.Equal(t, Classification, got)

	_, err = Unknown.MarshalText()
	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.Equal(t, "Classification", Classification.Title())
}

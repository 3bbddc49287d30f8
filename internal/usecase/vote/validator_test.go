package vote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/internal/domain/entity"
)

func testValidator() *Validator {
	return NewValidator(map[string]string{
		"best_spa":   "Best Spa",
		"best_hotel": "Best Hotel",
	})
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantField string
	}{
		{
			name: "valid single category",
			in:   Input{Email: "a@b.com", Nominations: map[string]string{"best_spa": "Spa A"}},
		},
		{
			name: "valid multiple categories",
			in: Input{Email: "a@b.com", Nominations: map[string]string{
				"best_spa": "Spa A", "best_hotel": "Hotel B",
			}},
		},
		{
			name:      "missing email",
			in:        Input{Nominations: map[string]string{"best_spa": "Spa A"}},
			wantField: "email",
		},
		{
			name:      "email without at sign",
			in:        Input{Email: "not-an-email", Nominations: map[string]string{"best_spa": "Spa A"}},
			wantField: "email",
		},
		{
			name:      "nil nominations",
			in:        Input{Email: "a@b.com"},
			wantField: "nominations",
		},
		{
			name:      "empty nominations",
			in:        Input{Email: "a@b.com", Nominations: map[string]string{}},
			wantField: "nominations",
		},
		{
			name:      "unknown category",
			in:        Input{Email: "a@b.com", Nominations: map[string]string{"best_villain": "X"}},
			wantField: "nominations",
		},
		{
			name:      "empty choice",
			in:        Input{Email: "a@b.com", Nominations: map[string]string{"best_spa": "   "}},
			wantField: "nominations",
		},
		{
			name: "choice too long",
			in: Input{Email: "a@b.com", Nominations: map[string]string{
				"best_spa": strings.Repeat("x", maxChoiceLen+1),
			}},
			wantField: "nominations",
		},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := v.Validate(tt.in)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.in.Email, sub.Email)
				assert.Len(t, sub.Nominations, len(tt.in.Nominations))
				return
			}

			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidator_TrimsInput(t *testing.T) {
	v := testValidator()

	sub, err := v.Validate(Input{
		Email:       "  a@b.com  ",
		Nominations: map[string]string{"best_spa": "  Spa A  "},
	})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", sub.Email)
	assert.Equal(t, "Spa A", sub.Nominations["best_spa"])
}

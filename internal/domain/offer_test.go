package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pctPtr(v int32) *int32 { return &v }

func Test_Offer_Orderable(t *testing.T) {
	tests := []struct {
		name  string
		offer Offer
		want  bool
	}{
		{"active and available", Offer{IsActive: true, IsAvailable: true}, true},
		{"inactive", Offer{IsActive: false, IsAvailable: true}, false},
		{"unavailable", Offer{IsActive: true, IsAvailable: false}, false},
		{"neither", Offer{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.offer.Orderable())
		})
	}
}

func Test_Offer_DiscountedPrice(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice int64
		percent   *int32
		want      *int64
	}{
		{
			name:      "no discount",
			unitPrice: 200,
			percent:   nil,
			want:      nil,
		},
		{
			name:      "zero percent is no discount",
			unitPrice: 200,
			percent:   pctPtr(0),
			want:      nil,
		},
		{
			name:      "quarter off",
			unitPrice: 200,
			percent:   pctPtr(25),
			want:      ptr(int64(150)),
		},
		{
			name:      "rounds to nearest minor unit",
			unitPrice: 99,
			percent:   pctPtr(33), // 66.33
			want:      ptr(int64(66)),
		},
		{
			name:      "rounds half up",
			unitPrice: 150,
			percent:   pctPtr(25), // 112.5
			want:      ptr(int64(113)),
		},
		{
			name:      "full discount",
			unitPrice: 200,
			percent:   pctPtr(100),
			want:      ptr(int64(0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := Offer{UnitPrice: tt.unitPrice, DiscountPercent: tt.percent}
			got := offer.DiscountedPrice()

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func ptr[T any](v T) *T { return &v }

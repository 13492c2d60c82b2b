package sources

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderSource_Categories(t *testing.T) {
	s := NewPlaceholderSource(PlaceholderOptions{})

	testCases := []struct {
		productName string
		want        string
	}{
		{"TK-481 (Daikin) Compressor Motor", "https://via.placeholder.com/800x600/4CAF50/FFFFFF?text=Compressor+Motor"},
		{"Water Pump 12V", "https://via.placeholder.com/800x600/4CAF50/FFFFFF?text=Compressor+Motor"},
		{"Return Air Temperature Probe", "https://via.placeholder.com/800x600/2196F3/FFFFFF?text=Sensor"},
		{"Solenoid Assembly", "https://via.placeholder.com/800x600/FF9800/FFFFFF?text=Valve"},
		{"Main Controller Board", "https://via.placeholder.com/800x600/9C27B0/FFFFFF?text=Controller"},
		{"Evaporator Fan", "https://via.placeholder.com/800x600/607D8B/FFFFFF?text=Coil"},
		{"PRIMER GREY 1L", "https://via.placeholder.com/800x600/795548/FFFFFF?text=Paint+Supplies"},
		{"Refrigerant R404A", "https://via.placeholder.com/800x600/F44336/FFFFFF?text=Gas+Cylinder"},
		{"Cable Tie Pack", "https://via.placeholder.com/800x600/FFC107/FFFFFF?text=Electrical"},
	}

	for _, tc := range testCases {
		t.Run(tc.productName, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Generate(tc.productName))
		})
	}
}

func TestPlaceholderSource_FirstCategoryWins(t *testing.T) {
	s := NewPlaceholderSource(PlaceholderOptions{})

	// "pressure" (Sensor) and "switch" (Electrical) both match; Sensor comes first
	got := s.Generate("High Pressure Switch")

	assert.Equal(t, "https://via.placeholder.com/800x600/2196F3/FFFFFF?text=Sensor", got)
}

func TestPlaceholderSource_GenericTruncatesAndEscapes(t *testing.T) {
	s := NewPlaceholderSource(PlaceholderOptions{})

	got := s.Generate("Door Seal & Hinge Kit For Trailer")

	assert.Equal(t, "https://via.placeholder.com/800x600/757575/FFFFFF?text=Door%20Seal%20%26%20Hinge%20Ki", got)
}

func TestPlaceholderSource_GenericKeepsSlashes(t *testing.T) {
	s := NewPlaceholderSource(PlaceholderOptions{})

	got := s.Generate("Hinge Pin/Assembly Kit")

	assert.Equal(t, "https://via.placeholder.com/800x600/757575/FFFFFF?text=Hinge%20Pin/Assembly%20K", got)
}

func TestPlaceholderSource_GenericCountsRunes(t *testing.T) {
	s := NewPlaceholderSource(PlaceholderOptions{})

	got := s.Generate("Ölfilter für Kühlaggregat Typ B")

	assert.True(t, strings.HasSuffix(got, "?text=%C3%96lfilter%20f%C3%BCr%20K%C3%BChlagg"), got)
}

func TestPlaceholderSource_AttemptIsTotal(t *testing.T) {
	s := NewPlaceholderSource(PlaceholderOptions{BaseURL: "https://ph.example.com/", Width: 400, Height: 300, TextColor: "000000"})

	for _, name := range []string{"x", "Hinge", "123", "(PN 77)"} {
		ref, err := s.Attempt(context.Background(), name)
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.True(t, strings.HasPrefix(*ref, "https://ph.example.com/400x300/757575/000000?text="), *ref)
	}
}

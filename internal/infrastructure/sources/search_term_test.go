package sources

import "testing"

func TestCleanSearchTerm(t *testing.T) {
	testCases := []struct {
		name        string
		productName string
		want        string
	}{
		{
			name:        "strips part code prefix and parenthetical brand",
			productName: "TK-481 (Daikin) Compressor Motor",
			want:        "481 Compressor Motor",
		},
		{
			name:        "strips leading brand case-insensitively",
			productName: "Daikin Expansion Valve",
			want:        "Expansion Valve",
		},
		{
			name:        "strips consecutive prefixes in table order",
			productName: "Carrier Q-Fan Blade",
			want:        "Fan Blade",
		},
		{
			name:        "keeps brand that is not at the start",
			productName: "Fan Motor Daikin",
			want:        "Fan Motor Daikin",
		},
		{
			name:        "removes every parenthetical fragment",
			productName: "Pressure Switch (HP) (PN 33-1234)",
			want:        "Pressure Switch",
		},
		{
			name:        "collapses whitespace",
			productName: "  Door   Gasket\tKit ",
			want:        "Door Gasket Kit",
		},
		{
			name:        "empty input",
			productName: "",
			want:        "",
		},
		{
			name:        "only a prefix",
			productName: "thermoking",
			want:        "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanSearchTerm(tc.productName)
			if got != tc.want {
				t.Errorf("CleanSearchTerm(%q) = %q, want %q", tc.productName, got, tc.want)
			}
		})
	}
}

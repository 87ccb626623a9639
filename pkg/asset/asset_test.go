package asset

import "testing"

func TestTypeTagValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  TypeTag
		want bool
	}{
		{"ANCS", true},
		{"TXTR", true},
		{"AN", false},
		{"ANCSX", false},
		{"AN\x00S", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.tag.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestParseGame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Game
		ok   bool
	}{
		{"prime", GamePrime, true},
		{"mp1", GamePrime, true},
		{"echoes", GameEchoes, true},
		{"prime2", GameEchoes, true},
		{"corruption", GameCorruption, true},
		{"mp3", GameCorruption, true},
		{"fusion", GameInvalid, false},
	}
	for _, tt := range tests {
		got, err := ParseGame(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseGame(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestIsValidID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		game Game
		id   AssetID
		want bool
	}{
		{"null id", GamePrime, 0, false},
		{"32-bit sentinel", GamePrime, 0xFFFFFFFF, false},
		{"normal 32-bit", GamePrime, 0xDEADBEEF, true},
		{"over 32-bit width", GamePrime, 0x1_0000_0000, false},
		{"64-bit sentinel", GameCorruption, 0xFFFFFFFFFFFFFFFF, false},
		{"64-bit id", GameCorruption, 0x1_0000_0000, true},
		// The 32-bit sentinel pattern is an ordinary value at 64-bit width.
		{"32-bit sentinel at 64-bit width", GameCorruption, 0xFFFFFFFF, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.game.IsValidID(tt.id); got != tt.want {
				t.Fatalf("IsValidID(%s) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIDWidth(t *testing.T) {
	t.Parallel()

	if w := GamePrime.IDWidth(); w != 4 {
		t.Fatalf("prime width = %d", w)
	}
	if w := GameEchoes.IDWidth(); w != 4 {
		t.Fatalf("echoes width = %d", w)
	}
	if w := GameCorruption.IDWidth(); w != 8 {
		t.Fatalf("corruption width = %d", w)
	}
}

func TestAssetIDString(t *testing.T) {
	t.Parallel()

	if s := AssetID(0xBEEF).String(); s != "0x0000BEEF" {
		t.Fatalf("got %q", s)
	}
}

package style

import "testing"

func TestUnitResolve(t *testing.T) {
	tests := []struct {
		name   string
		unit   Unit
		parent float32
		want   float32
		ok     bool
	}{
		{"auto", Auto, 100, 0, false},
		{"px", Px(12), 100, 12, true},
		{"percent", Percent(50), 200, 100, true},
		{"percent unknown parent", Percent(50), -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.unit.Resolve(tt.parent)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%v) = (%v, %v), want (%v, %v)", tt.parent, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUnitString(t *testing.T) {
	tests := []struct {
		unit Unit
		want string
	}{
		{Auto, "auto"},
		{Px(3.5), "3.5px"},
		{Percent(25), "25%"},
	}
	for _, tt := range tests {
		if got := tt.unit.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DisplayNone.String(), "none"},
		{FlexDirectionColumn.String(), "column"},
		{JustifySpaceEvenly.String(), "space_evenly"},
		{AlignStretch.String(), "stretch"},
		{FontWeightBold.String(), "bold"},
		{Display(9).String(), "Display(9)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.Shrink != 1 {
		t.Errorf("Shrink = %v, want 1", s.Shrink)
	}
	if s.EffectiveFontSize() != DefaultFontSize {
		t.Errorf("EffectiveFontSize = %v, want %v", s.EffectiveFontSize(), DefaultFontSize)
	}
	var zero Style
	if zero.EffectiveFontSize() != DefaultFontSize {
		t.Error("zero style should fall back to the default font size")
	}
}

package game

import (
	"testing"

	"github.com/lxn/win"
)

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"MOUSE1", win.VK_LBUTTON, false},
		{"mouse5", win.VK_XBUTTON2, false},
		{" F1 ", win.VK_F1, false},
		{"capslock", win.VK_CAPITAL, false},
		{"q", 'Q', false},
		{"7", '7', false},
		{"0x14", 0x14, false},
		{"0x00", 0, true},
		{"0x1FF", 0, true},
		{"NOPE", 0, true},
	}

	for _, tt := range tests {
		got, err := ResolveKey(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveKey(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveKey(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

package main

import (
	"strings"
	"testing"
)

func TestLicenseBanner(t *testing.T) {
	for _, want := range []string{"Alwan", "vike256", "GNU General Public License version 3", "NO WARRANTY"} {
		if !strings.Contains(license, want) {
			t.Errorf("license banner is missing %q", want)
		}
	}
	if strings.Contains(license, "MIT") {
		t.Error("license banner names the MIT license")
	}
}

package models

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Casa del Sol", "casa-del-sol"},
		{"  Edificio   Norte  ", "edificio-norte"},
		{"Reforma_Integral", "reforma-integral"},
		{"Torre 21", "torre-21"},
		{"Café & Niños!", "caf-nios"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

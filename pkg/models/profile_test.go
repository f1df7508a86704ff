package models

import "testing"

func TestParseSex(t *testing.T) {
	tests := []struct {
		in   string
		want Sex
	}{
		{"male", SexMale},
		{"Female", SexFemale},
		{"  MALE ", SexMale},
		{"unknown", SexUnknown},
		{"", SexUnknown},
		{"prefer not to say", SexUnknown},
	}
	for _, tt := range tests {
		if got := ParseSex(tt.in); got != tt.want {
			t.Errorf("ParseSex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeGenre(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Action", "Action", true},
		{"sci-fi", "Sci-Fi", true},
		{" film-noir ", "Film-Noir", true},
		{"CHILDREN'S", "Children's", true},
		{"Science Fiction", "", false},
		{"Children", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeGenre(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeGenre(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if p.Sex != SexUnknown || p.Age != 0 {
		t.Errorf("sex/age = %q/%d", p.Sex, p.Age)
	}
	if p.TimePeriod != (TimePeriod{Start: 0, End: 9999}) {
		t.Errorf("time period = %+v", p.TimePeriod)
	}
	for name, list := range map[string][]string{
		"movies": p.Movies, "genres": p.Genres, "directors": p.Directors, "actors": p.Actors,
	} {
		if list == nil || len(list) != 0 {
			t.Errorf("%s = %#v, want empty non-nil slice", name, list)
		}
	}
}

func TestGenresAreCanonical(t *testing.T) {
	seen := make(map[string]bool)
	for _, g := range Genres {
		if seen[g] {
			t.Errorf("duplicate genre %q", g)
		}
		seen[g] = true
		if got, ok := NormalizeGenre(g); !ok || got != g {
			t.Errorf("NormalizeGenre(%q) = %q, %v", g, got, ok)
		}
	}
	if len(Genres) != 18 {
		t.Errorf("len(Genres) = %d, want 18", len(Genres))
	}
}

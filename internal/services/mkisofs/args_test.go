package mkisofs

import (
	"reflect"
	"testing"
)

func TestArgs(t *testing.T) {
	want := []string{"-UDF", "-R", "-J", "-input-charset", "utf-8", "-iso-level", "3", "-V", "MY_MOVIE", "-o", "/scratch/My Movie.iso", "/scratch/backup"}
	if got := Args("MY_MOVIE", "/scratch/My Movie.iso", "/scratch/backup"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Args = %q", got)
	}
}

func TestVolumeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Movie", "MY_MOVIE"},
		{"MY_MOVIE", "MY_MOVIE"},
		{"Alien: Director's Cut", "ALIEN_DIRECTORS_CUT"},
		{"Amélie", "AMLIE"},
		{"   ", "DISC"},
		{"The Lord of the Rings The Return of the King", "THE_LORD_OF_THE_RINGS_THE_RETURN"},
	}
	for _, tt := range tests {
		if got := VolumeLabel(tt.in); got != tt.want {
			t.Errorf("VolumeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

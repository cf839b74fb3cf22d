package account

import "testing"

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Alice@Example.COM", "alice@example.com", false},
		{"  bob@example.com ", "bob@example.com", false},
		{"carol+tag@example.com", "carol+tag@example.com", false},
		{"", "", true},
		{"not-an-email", "", true},
		{"Bob <bob@example.com>", "", true},
		{"two@@example.com", "", true},
	}

	for _, tc := range cases {
		got, err := NormalizeEmail(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizeEmail(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeEmail(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLocalPart(t *testing.T) {
	if got := LocalPart("alice@example.com"); got != "alice" {
		t.Errorf("LocalPart = %q, want alice", got)
	}
	if got := LocalPart("no-at-sign"); got != "no-at-sign" {
		t.Errorf("LocalPart = %q, want the input back", got)
	}
}

func TestHasUsername(t *testing.T) {
	var a Account
	if a.HasUsername() {
		t.Error("nil username should not count")
	}
	empty := ""
	a.Username = &empty
	if a.HasUsername() {
		t.Error("empty username should not count")
	}
	name := "alice"
	a.Username = &name
	if !a.HasUsername() {
		t.Error("expected username to count")
	}
}

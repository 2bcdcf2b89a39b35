package access

import "testing"

func TestAccess_Grants(t *testing.T) {
	cases := []struct {
		have, want Access
		grants     bool
	}{
		{Read, Read, true},
		{Read, Write, false},
		{Write, Read, true},
		{Write, Write, true},
		{Write, Manage, false},
		{Manage, Read, true},
		{Manage, Write, true},
		{Manage, Manage, true},
	}
	for _, tc := range cases {
		if got := tc.have.Grants(tc.want); got != tc.grants {
			t.Errorf("%s.Grants(%s) = %v, want %v", tc.have, tc.want, got, tc.grants)
		}
	}
}

func TestAccess_String(t *testing.T) {
	if Read.String() != "Read" || Write.String() != "Write" || Manage.String() != "Manage" {
		t.Errorf("unexpected String() output")
	}
	if Access(99).String() != "Unknown" {
		t.Errorf("expected Unknown for out-of-range access value")
	}
}

func TestAccess_IsValid(t *testing.T) {
	if !Read.IsValid() || !Write.IsValid() || !Manage.IsValid() {
		t.Errorf("defined access levels should be valid")
	}
	if Access(99).IsValid() {
		t.Errorf("out-of-range access value should not be valid")
	}
}

func TestMax(t *testing.T) {
	if Max(Read, Manage) != Manage {
		t.Errorf("Max(Read, Manage) should be Manage")
	}
	if Max(Write, Read) != Write {
		t.Errorf("Max(Write, Read) should be Write")
	}
}

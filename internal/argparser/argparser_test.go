package argparser

import "testing"

func TestArgCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello", 1},
		{"hello,world", 2},
		{"a,b,c", 3},
	}
	for _, c := range cases {
		if got := ArgCount(c.in); got != c.want {
			t.Errorf("ArgCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestExtractU64(t *testing.T) {
	v, err := ExtractU64("42,100", 0)
	if err != nil || v != 42 {
		t.Errorf("ExtractU64 = %d, %v; want 42, nil", v, err)
	}
	v, err = ExtractU64("42,100", 1)
	if err != nil || v != 100 {
		t.Errorf("ExtractU64 = %d, %v; want 100, nil", v, err)
	}
	if _, err := ExtractU64("abc", 0); err == nil {
		t.Errorf("expected error for non-digit token")
	}
	if _, err := ExtractU64("", 0); err == nil {
		t.Errorf("expected error for empty string")
	}
	if _, err := ExtractU64("1,2", 5); err == nil {
		t.Errorf("expected error for out-of-range index")
	}
}

func TestExtractString(t *testing.T) {
	s, err := ExtractString(" hello , world ", 0, 10)
	if err != nil || s != "hello" {
		t.Errorf("ExtractString = %q, %v; want \"hello\", nil", s, err)
	}
	s, err = ExtractString(" hello , world ", 1, 10)
	if err != nil || s != "world" {
		t.Errorf("ExtractString = %q, %v; want \"world\", nil", s, err)
	}
	if _, err := ExtractString("toolong", 0, 3); err != ErrDoesNotFit {
		t.Errorf("expected ErrDoesNotFit, got %v", err)
	}
}

func TestExtractHexArray(t *testing.T) {
	b, err := ExtractHexArray("DEADBEEF", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if len(b) != len(want) {
		t.Fatalf("got %v, want %v", b, want)
	}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("byte %d = %x, want %x", i, b[i], want[i])
		}
	}

	b2, err := ExtractHexArray("DE_AD BE_EF", 0)
	if err != nil {
		t.Fatalf("unexpected error with separators: %v", err)
	}
	if len(b2) != 4 || b2[0] != 0xDE {
		t.Errorf("got %v, want %v", b2, want)
	}

	if _, err := ExtractHexArray("DEA", 0); err == nil {
		t.Errorf("expected error for odd nibble count")
	}
	if _, err := ExtractHexArray("ZZ", 0); err == nil {
		t.Errorf("expected error for non-hex chars")
	}

	// A separator landing inside a byte is an error even though the total
	// nibble count across the whole token is even.
	if _, err := ExtractHexArray("a_b", 0); err == nil {
		t.Errorf("expected error for separator within a byte")
	}
	if _, err := ExtractHexArray("ab_c_de", 0); err == nil {
		t.Errorf("expected error for separator within a byte")
	}
}

func TestExtractF64(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.14", 3.14, true},
		{"-3.14", -3.14, true},
		{"42", 42, true},
		{"-42", -42, true},
		{".5", 0, false},
		{"5.", 0, false},
		{"-", 0, false},
		{"3.1.4", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		v, err := ExtractF64(c.in, 0)
		if c.ok && (err != nil || v != c.want) {
			t.Errorf("ExtractF64(%q) = %v, %v; want %v, nil", c.in, v, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ExtractF64(%q) = %v, nil; want an error", c.in, v)
		}
	}
}

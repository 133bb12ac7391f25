package ultrastar

import "testing"

func TestCollateInsensitive(t *testing.T) {
	if Collate("HELLO") != Collate("hello") {
		t.Error("collation should be case-insensitive")
	}
	if Collate("Mötley") != Collate("Motley") {
		t.Error("collation should ignore diacritics")
	}
	if Collate("\"Weird\" Al") != Collate("Weird\" Al") {
		t.Error("leading punctuation should not affect the key")
	}
}

func TestCollateOrdering(t *testing.T) {
	if !(Collate("abba") < Collate("beatles")) {
		t.Error("keys should preserve alphabetical order")
	}
}

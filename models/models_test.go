package models

import "testing"

func TestSiteName(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://www.example.com", "example_com"},
		{"https://shop.my-store.co.uk/collections", "shop_my_store_co_uk"},
		{"http://example.com:8080", "example_com_8080"},
		{"https://exämple.com", "ex_mple_com"},
		{"not a url at all", "not_a_url_at_all"},
	}

	for _, tt := range tests {
		if got := SiteName(tt.rawURL); got != tt.want {
			t.Errorf("SiteName(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(true); got != ClassificationPopup {
		t.Errorf("Classify(true) = %q, want %q", got, ClassificationPopup)
	}
	if got := Classify(false); got != ClassificationNoPopup {
		t.Errorf("Classify(false) = %q, want %q", got, ClassificationNoPopup)
	}
}

package audit

import (
	"reflect"
	"testing"
)

func TestFilterProductLinks(t *testing.T) {
	hrefs := []string{
		"https://shop.example.com/products/blue-shirt",
		"https://shop.example.com/products/blue-shirt", // duplicate anchor
		"https://shop.example.com/products/blue-shirt#reviews",
		"#top",
		"/products/relative-ignored",
		"mailto:sales@example.com",
		"https://shop.example.com/about",
		"https://shop.example.com/product/red-hat",
		"https://shop.example.com/shop/sale",
		"https://shop.example.com/store/outlet",
	}

	got := filterProductLinks(hrefs, 3)
	want := []string{
		"https://shop.example.com/products/blue-shirt",
		"https://shop.example.com/product/red-hat",
		"https://shop.example.com/shop/sale",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterProductLinks() = %v, want %v", got, want)
	}
}

func TestFilterProductLinksDedupeBeforeCap(t *testing.T) {
	// Duplicates must not consume cap slots.
	hrefs := []string{
		"https://x.com/products/a",
		"https://x.com/products/a",
		"https://x.com/products/a",
		"https://x.com/products/b",
		"https://x.com/products/c",
	}
	got := filterProductLinks(hrefs, 3)
	if len(got) != 3 {
		t.Fatalf("got %d links, want 3: %v", len(got), got)
	}
	if got[2] != "https://x.com/products/c" {
		t.Errorf("got[2] = %q, want the third unique link", got[2])
	}
}

func TestFilterProductLinksCap(t *testing.T) {
	hrefs := []string{
		"https://x.com/products/a",
		"https://x.com/products/b",
	}
	if got := filterProductLinks(hrefs, 3); len(got) != 2 {
		t.Errorf("cap above discovery count: got %d links, want 2", len(got))
	}
	if got := filterProductLinks(hrefs, 0); got != nil {
		t.Errorf("zero cap: got %v, want nil", got)
	}
}

func TestHasProductPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/products/blue-shirt", true},
		{"/product/red-hat", true},
		{"/shop", true}, // trailing slash is normalized before matching
		{"/STORE/outlet", true},
		{"/blog/shopping-tips", false},
		{"/", false},
	}
	for _, tt := range tests {
		if got := hasProductPath(tt.path); got != tt.want {
			t.Errorf("hasProductPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

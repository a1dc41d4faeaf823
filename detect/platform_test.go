package detect

import "testing"

func TestMatchPlatform(t *testing.T) {
	tests := []struct {
		name        string
		scripts     []string
		stylesheets []string
		generator   string
		globals     map[string]bool
		want        bool
	}{
		{
			name:    "shopify script src",
			scripts: []string{"https://cdn.shopify.com/s/files/1/0001/assets/theme.js"},
			want:    true,
		},
		{
			name:      "generator meta tag",
			generator: "WooCommerce 8.5",
			want:      true,
		},
		{
			name:    "window global",
			globals: map[string]bool{"BCData": true},
			want:    true,
		},
		{
			name:        "stylesheet href",
			stylesheets: []string{"https://cdn.shopify.com/s/files/theme.css"},
			want:        true,
		},
		{
			name:      "unrelated site",
			scripts:   []string{"https://cdn.example.com/analytics.js"},
			generator: "Hugo 0.120",
			globals:   map[string]bool{"Shopify": false},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchPlatform(tt.scripts, tt.stylesheets, tt.generator, tt.globals)
			if got != tt.want {
				t.Errorf("matchPlatform() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchCommerce(t *testing.T) {
	tests := []struct {
		name    string
		signals commerceSignals
		want    bool
	}{
		{"add to cart phrase", commerceSignals{AddToCart: true}, true},
		{"cart element", commerceSignals{CartElement: true}, true},
		{"price with shop keyword", commerceSignals{PriceSignal: true, ShopKeyword: true}, true},
		{"price without shop keyword", commerceSignals{PriceSignal: true}, false},
		{"shop keyword without price", commerceSignals{ShopKeyword: true}, false},
		{"nothing", commerceSignals{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchCommerce(tt.signals); got != tt.want {
				t.Errorf("matchCommerce(%+v) = %v, want %v", tt.signals, got, tt.want)
			}
		})
	}
}

package detect

import (
	"strings"

	"go.uber.org/zap"

	"github.com/leadsight/leadsight/log"
)

// Evaluator runs a read-only JS probe in page context and decodes the result.
// browser.Session satisfies it.
type Evaluator interface {
	Eval(js string, out any, args ...any) error
}

// platformSignature describes one hosted commerce platform. Each field is an
// independent check; any hit marks the platform as present.
type platformSignature struct {
	Name            string
	ScriptHints     []string
	StylesheetHints []string
	Generators      []string
	Globals         []string
}

var commercePlatforms = []platformSignature{
	{
		Name:            "Shopify",
		ScriptHints:     []string{"cdn.shopify.com", "shopifycloud"},
		StylesheetHints: []string{"cdn.shopify.com"},
		Generators:      []string{"shopify"},
		Globals:         []string{"Shopify", "ShopifyAnalytics"},
	},
	{
		Name:        "BigCommerce",
		ScriptHints: []string{"bigcommerce.com", "cdn11.bigcommerce"},
		Generators:  []string{"bigcommerce"},
		Globals:     []string{"BCData"},
	},
	{
		Name:        "WooCommerce",
		ScriptHints: []string{"woocommerce", "wp-content/plugins/woocommerce"},
		Generators:  []string{"woocommerce"},
		Globals:     []string{"wc_add_to_cart_params"},
	},
	{
		Name:            "Squarespace",
		ScriptHints:     []string{"squarespace.com", "static1.squarespace"},
		StylesheetHints: []string{"squarespace.com"},
		Generators:      []string{"squarespace"},
	},
	{
		Name:        "Wix",
		ScriptHints: []string{"wixstatic.com", "parastorage.com"},
		Generators:  []string{"wix.com"},
		Globals:     []string{"wixBiSession"},
	},
}

// pageSurface is what the platform probe reports back from the page.
type pageSurface struct {
	Scripts     []string        `json:"scripts"`
	Stylesheets []string        `json:"stylesheets"`
	Generator   string          `json:"generator"`
	Globals     map[string]bool `json:"globals"`
}

const surfaceScript = `(names) => {
	const out = { scripts: [], stylesheets: [], generator: '', globals: {} };
	try {
		out.scripts = Array.from(document.querySelectorAll('script[src]')).map(s => s.src);
		out.stylesheets = Array.from(document.querySelectorAll('link[rel="stylesheet"][href]')).map(l => l.href);
		const gen = document.querySelector('meta[name="generator"]');
		if (gen) out.generator = gen.getAttribute('content') || '';
		for (const n of names) {
			try { out.globals[n] = typeof window[n] !== 'undefined'; } catch (e) { out.globals[n] = false; }
		}
	} catch (e) {}
	return out;
}`

// Platform reports whether the page runs on a recognized hosted commerce
// platform. It never errors; an evaluation fault is absence of evidence.
func Platform(e Evaluator) bool {
	var surface pageSurface
	if err := e.Eval(surfaceScript, &surface, platformGlobals()); err != nil {
		log.Logger.Warn("platform probe failed", zap.Error(err))
		return false
	}
	return matchPlatform(surface.Scripts, surface.Stylesheets, surface.Generator, surface.Globals)
}

// matchPlatform runs the signature table against the probed page surface.
func matchPlatform(scripts, stylesheets []string, generator string, globals map[string]bool) bool {
	generator = strings.ToLower(generator)
	for _, sig := range commercePlatforms {
		if anyContains(scripts, sig.ScriptHints) ||
			anyContains(stylesheets, sig.StylesheetHints) ||
			containsAny(generator, sig.Generators) ||
			anyGlobal(globals, sig.Globals) {
			return true
		}
	}
	return false
}

func platformGlobals() []string {
	var names []string
	for _, sig := range commercePlatforms {
		names = append(names, sig.Globals...)
	}
	return names
}

func anyContains(urls, hints []string) bool {
	for _, u := range urls {
		if containsAny(strings.ToLower(u), hints) {
			return true
		}
	}
	return false
}

func containsAny(s string, hints []string) bool {
	for _, hint := range hints {
		if hint != "" && strings.Contains(s, hint) {
			return true
		}
	}
	return false
}

func anyGlobal(globals map[string]bool, names []string) bool {
	for _, n := range names {
		if globals[n] {
			return true
		}
	}
	return false
}

// commerceSignals is what the e-commerce probe reports back.
type commerceSignals struct {
	AddToCart   bool `json:"addToCart"`
	CartElement bool `json:"cartElement"`
	PriceSignal bool `json:"priceSignal"`
	ShopKeyword bool `json:"shopKeyword"`
}

const commerceScript = `() => {
	const out = { addToCart: false, cartElement: false, priceSignal: false, shopKeyword: false };
	try {
		const text = (document.body ? document.body.innerText : '').toLowerCase();
		out.addToCart = ['add to cart', 'add to bag', 'add to basket', 'buy now'].some(p => text.includes(p));
		out.cartElement = !!document.querySelector('[class*="cart"], [id*="cart"], a[href*="/cart"]');
		out.priceSignal = !!document.querySelector('[class*="price"], [itemprop="price"]') || /\$\d+/.test(text);
		out.shopKeyword = ['product', 'shop', 'store', 'collection'].some(k => text.includes(k));
	} catch (e) {}
	return out;
}`

// Commerce reports whether the page looks like an online store. Never errors.
func Commerce(e Evaluator) bool {
	var signals commerceSignals
	if err := e.Eval(commerceScript, &signals); err != nil {
		log.Logger.Warn("commerce probe failed", zap.Error(err))
		return false
	}
	return matchCommerce(signals)
}

// matchCommerce applies the commerce heuristic: an add-to-cart phrase or a
// cart element is enough on its own; a price signal only counts when a
// product/shop keyword backs it up.
func matchCommerce(s commerceSignals) bool {
	return s.AddToCart || s.CartElement || (s.PriceSignal && s.ShopKeyword)
}

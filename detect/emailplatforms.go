package detect

import "strings"

// EmailPlatform is one known email-marketing integration. A platform matches
// when any of its window globals is defined or any script src contains one of
// its hints. Adding an integration is a data change, not new control flow.
type EmailPlatform struct {
	Name        string
	Globals     []string
	ScriptHints []string
}

var emailPlatforms = []EmailPlatform{
	{Name: "Klaviyo", Globals: []string{"_learnq", "klaviyo"}, ScriptHints: []string{"klaviyo.com", "klaviyo.js"}},
	{Name: "Mailchimp", Globals: []string{"mc4wp"}, ScriptHints: []string{"chimpstatic.com", "mailchimp.com", "list-manage.com"}},
	{Name: "Privy", Globals: []string{"_privy", "Privy"}, ScriptHints: []string{"privy.com", "privymktg"}},
	{Name: "Omnisend", Globals: []string{"omnisend"}, ScriptHints: []string{"omnisend.com", "omnisnippet"}},
	{Name: "ActiveCampaign", Globals: []string{"vgo"}, ScriptHints: []string{"activehosted.com", "activecampaign.com"}},
	{Name: "HubSpot", Globals: []string{"_hsq", "HubSpotConversations"}, ScriptHints: []string{"hs-scripts.com", "hsforms.net", "hubspot.com"}},
	{Name: "ConvertKit", Globals: []string{"convertkit"}, ScriptHints: []string{"convertkit.com", "ck.page"}},
	{Name: "OptinMonster", Globals: []string{"OptinMonsterAPI", "om_loaded"}, ScriptHints: []string{"optinmonster.com", "opmnstr.com"}},
	{Name: "Sumo", Globals: []string{"Sumo"}, ScriptHints: []string{"sumo.com", "sumome.com"}},
	{Name: "Justuno", Globals: []string{"ju_num", "juapp"}, ScriptHints: []string{"justuno.com"}},
	{Name: "Drip", Globals: []string{"_dcq", "_dc"}, ScriptHints: []string{"getdrip.com"}},
	{Name: "Wisepops", Globals: []string{"wisepops"}, ScriptHints: []string{"wisepops.com"}},
}

// emailPlatformGlobals flattens the registry's global names for the probe.
func emailPlatformGlobals() []string {
	var names []string
	for _, p := range emailPlatforms {
		names = append(names, p.Globals...)
	}
	return names
}

// matchEmailPlatforms evaluates the registry against the probed page state.
// Platforms are tested in registry order, each at most once; the first match
// becomes the primary platform.
func matchEmailPlatforms(globals map[string]bool, scriptSrcs []string) (primary string, all []string) {
	for _, p := range emailPlatforms {
		if platformMatches(p, globals, scriptSrcs) {
			if primary == "" {
				primary = p.Name
			}
			all = append(all, p.Name)
		}
	}
	return primary, all
}

func platformMatches(p EmailPlatform, globals map[string]bool, scriptSrcs []string) bool {
	for _, g := range p.Globals {
		if globals[g] {
			return true
		}
	}
	for _, src := range scriptSrcs {
		lower := strings.ToLower(src)
		for _, hint := range p.ScriptHints {
			if strings.Contains(lower, hint) {
				return true
			}
		}
	}
	return false
}

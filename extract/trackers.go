package extract

import (
	"net/url"
	"sort"
	"strings"
)

// trackerVendors maps well-known ad and analytics hosts to a vendor name.
// Subdomains resolve through their parent (pagead2.googlesyndication.com
// matches googlesyndication.com).
var trackerVendors = map[string]string{
	"doubleclick.net":       "Google Ads",
	"googlesyndication.com": "Google Ads",
	"googleadservices.com":  "Google Ads",
	"google-analytics.com":  "Google Analytics",
	"googletagmanager.com":  "Google Tag Manager",
	"googletagservices.com": "Google Ads",
	"facebook.net":          "Meta Pixel",
	"connect.facebook.net":  "Meta Pixel",
	"bat.bing.com":          "Microsoft Ads",
	"clarity.ms":            "Microsoft Clarity",
	"snap.licdn.com":        "LinkedIn Insight",
	"px.ads.linkedin.com":   "LinkedIn Insight",
	"analytics.tiktok.com":  "TikTok Pixel",
	"ads-twitter.com":       "X Ads",
	"analytics.twitter.com": "X Ads",
	"adnxs.com":             "Xandr",
	"adsrvr.org":            "The Trade Desk",
	"amazon-adsystem.com":   "Amazon Ads",
	"criteo.com":            "Criteo",
	"criteo.net":            "Criteo",
	"outbrain.com":          "Outbrain",
	"taboola.com":           "Taboola",
	"hotjar.com":            "Hotjar",
	"mixpanel.com":          "Mixpanel",
	"segment.io":            "Segment",
	"segment.com":           "Segment",
	"optimizely.com":        "Optimizely",
	"quantserve.com":        "Quantcast",
	"scorecardresearch.com": "Comscore",
	"demdex.net":            "Adobe Audience Manager",
	"omtrdc.net":            "Adobe Analytics",
	"hs-analytics.net":      "HubSpot",
	"hs-scripts.com":        "HubSpot",
}

// TrackingVendors returns the sorted, de-duplicated vendor names whose
// hosts appear among the resource URLs.
func TrackingVendors(resources []string) []string {
	seen := make(map[string]struct{})
	for _, raw := range resources {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		if vendor, ok := vendorForHost(u.Hostname()); ok {
			seen[vendor] = struct{}{}
		}
	}

	vendors := make([]string, 0, len(seen))
	for v := range seen {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	return vendors
}

// vendorForHost checks host and each parent domain against the vendor table.
func vendorForHost(host string) (string, bool) {
	host = strings.ToLower(host)
	for {
		if v, ok := trackerVendors[host]; ok {
			return v, true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return "", false
		}
		host = host[idx+1:]
	}
}

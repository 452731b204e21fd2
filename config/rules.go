package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// DefaultRulesFile is the rules file name looked up in the working directory.
const DefaultRulesFile = ".lpaudit.yaml"

// CTAProbe is one entry of the call-to-action probe list. When Text is set
// the probe matches Selector elements whose text contains Text, ignoring case.
type CTAProbe struct {
	Selector string `yaml:"selector"`
	Text     string `yaml:"text,omitempty"`
}

// Rules holds the tunable detection lists used by the page probes.
// Empty lists in a rules file keep the built-in defaults.
type Rules struct {
	CTAProbes           []CTAProbe `yaml:"cta_probes"`
	ChatSelectors       []string   `yaml:"chat_selectors"`
	TestimonialKeywords []string   `yaml:"testimonial_keywords"`
	BadgeKeywords       []string   `yaml:"badge_keywords"`
}

// DefaultRules returns the built-in detection lists.
func DefaultRules() *Rules {
	return &Rules{
		CTAProbes: []CTAProbe{
			{Selector: "a[href*='signup']"},
			{Selector: "a[href*='register']"},
			{Selector: "a[href*='contact']"},
			{Selector: "a[href*='demo']"},
			{Selector: "a[href*='trial']"},
			{Selector: "a[href*='buy']"},
			{Selector: "button", Text: "Get Started"},
			{Selector: "button", Text: "Sign Up"},
			{Selector: "button", Text: "Buy Now"},
			{Selector: "button", Text: "Contact"},
			{Selector: "button", Text: "Free Trial"},
			{Selector: "button", Text: "Book"},
			{Selector: ".cta"},
			{Selector: "[class*='cta']"},
		},
		ChatSelectors: []string{
			"[class*='chat']",
			"[id*='chat']",
			"[class*='intercom']",
			"[class*='drift']",
			"[class*='hubspot']",
			"[class*='zendesk']",
		},
		TestimonialKeywords: []string{"testimonial", "customer said", "what our"},
		BadgeKeywords:       []string{"trusted by", "as seen", "certified", "award"},
	}
}

// Validate checks that every selector parses.
func (r *Rules) Validate() error {
	for _, p := range r.CTAProbes {
		if _, err := cascadia.Parse(p.Selector); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidSelector, p.Selector, err)
		}
	}
	for _, s := range r.ChatSelectors {
		if _, err := cascadia.Parse(s); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidSelector, s, err)
		}
	}
	return nil
}

// LoadRules reads a YAML rules file and overlays it on the defaults.
// A missing file yields ErrRulesNotFound.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRulesNotFound
		}
		return nil, err
	}

	var file Rules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}

	rules := DefaultRules()
	if len(file.CTAProbes) > 0 {
		rules.CTAProbes = file.CTAProbes
	}
	if len(file.ChatSelectors) > 0 {
		rules.ChatSelectors = file.ChatSelectors
	}
	if len(file.TestimonialKeywords) > 0 {
		rules.TestimonialKeywords = file.TestimonialKeywords
	}
	if len(file.BadgeKeywords) > 0 {
		rules.BadgeKeywords = file.BadgeKeywords
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// FindRulesFile searches for a rules file in the following order:
//  1. rulesPath, if specified
//  2. .lpaudit.yaml in the current directory
//  3. lpaudit/rules.yaml under the XDG config home
//
// Returns the empty string when nothing is found.
func FindRulesFile(rulesPath string) string {
	if rulesPath != "" {
		if _, err := os.Stat(rulesPath); err == nil {
			return rulesPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultRulesFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(xdg.ConfigHome, "lpaudit", "rules.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}

// ResolveRules finds and loads the rules file, falling back to the
// defaults when none exists. An explicit rulesPath that does not exist
// is an error.
func ResolveRules(rulesPath string) (*Rules, string, error) {
	path := FindRulesFile(rulesPath)
	if path == "" {
		if rulesPath != "" {
			return nil, "", fmt.Errorf("%w: %s", ErrRulesNotFound, rulesPath)
		}
		return DefaultRules(), "", nil
	}

	rules, err := LoadRules(path)
	if err != nil {
		if errors.Is(err, ErrRulesNotFound) {
			return nil, "", fmt.Errorf("%w: %s", ErrRulesNotFound, path)
		}
		return nil, "", err
	}
	return rules, path, nil
}

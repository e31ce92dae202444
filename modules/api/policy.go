package api

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Rule matches a request path and, optionally, a set of methods.
type Rule struct {
	Path    string   `yaml:"path"`
	Methods []string `yaml:"methods"`

	pattern *regexp.Regexp
}

// Matches reports whether the rule covers method and path.
func (r *Rule) Matches(method, path string) bool {
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, method) {
		return false
	}
	return r.pattern.MatchString(path)
}

// AccessPolicy decides which routes need a token and who may call them.
type AccessPolicy struct {
	Public    []Rule `yaml:"public"`
	AdminOnly *bool  `yaml:"adminOnly"`
	User      []Rule `yaml:"user"`
}

// LoadPolicy reads the policy from path, or the built-in policy when path
// is empty, and binds it to the API prefix.
func LoadPolicy(path, apiURL string) (*AccessPolicy, error) {
	data := defaultPolicy
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read access policy: %w", err)
		}
		data = raw
	}
	return ParsePolicy(data, apiURL)
}

// ParsePolicy parses a YAML policy.
func ParsePolicy(data []byte, apiURL string) (*AccessPolicy, error) {
	var p AccessPolicy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse access policy: %w", err)
	}
	if p.AdminOnly == nil {
		adminOnly := true
		p.AdminOnly = &adminOnly
	}

	prefix := regexp.QuoteMeta(strings.TrimRight(apiURL, "/"))
	for _, rules := range [][]Rule{p.Public, p.User} {
		for i := range rules {
			if err := rules[i].compile(prefix); err != nil {
				return nil, err
			}
		}
	}
	return &p, nil
}

func (r *Rule) compile(prefix string) error {
	expr := strings.ReplaceAll(r.Path, "{api}", prefix)
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid access rule %q: %w", r.Path, err)
	}
	r.pattern = pattern
	for i, m := range r.Methods {
		r.Methods[i] = strings.ToUpper(m)
	}
	return nil
}

// IsPublic reports whether a request may skip token verification.
func (p *AccessPolicy) IsPublic(method, path string) bool {
	return matchAny(p.Public, method, path)
}

// AllowsUser reports whether a non-admin caller may reach the route.
func (p *AccessPolicy) AllowsUser(method, path string) bool {
	if *p.AdminOnly {
		return false
	}
	return matchAny(p.User, method, path)
}

func matchAny(rules []Rule, method, path string) bool {
	for i := range rules {
		if rules[i].Matches(method, path) {
			return true
		}
	}
	return false
}

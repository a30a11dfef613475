package service

import (
	"net/http"
	"strings"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// Action is the kind of access requested on a resource.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// ActionForMethod maps an HTTP method to an Action. Safe methods read,
// everything else writes.
func ActionForMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	default:
		return ActionWrite
	}
}

// AccessRule grants access to resources under Prefix.
//
// An empty Actions list applies the rule to every action. Public rules need
// no principal; otherwise the caller must hold one of AnyOf, or any role at
// all when AnyOf is empty.
type AccessRule struct {
	Prefix  string
	Actions []Action
	Public  bool
	AnyOf   []string
}

type compiledRule struct {
	AccessRule
	segments []string
}

func (r compiledRule) appliesTo(action Action) bool {
	if len(r.Actions) == 0 {
		return true
	}
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

func (r compiledRule) matches(segments []string) bool {
	if len(r.segments) > len(segments) {
		return false
	}
	for i, s := range r.segments {
		if segments[i] != s {
			return false
		}
	}
	return true
}

func (r compiledRule) permits(roles []string) bool {
	if r.Public {
		return true
	}
	if len(r.AnyOf) == 0 {
		return len(roles) > 0
	}
	for _, have := range roles {
		for _, want := range r.AnyOf {
			if have == want {
				return true
			}
		}
	}
	return false
}

// DefaultAccessRules is the back office's access table.
func DefaultAccessRules() []AccessRule {
	return []AccessRule{
		{Prefix: "/login", Public: true},
		{Prefix: "/logout", Public: true},
		{Prefix: "/health", Public: true},
		{Prefix: "/metrics", Public: true},
		{Prefix: "/swagger", Public: true},
		{Prefix: "/clients", Actions: []Action{ActionRead}, AnyOf: []string{domain.RoleUser, domain.RoleAdmin}},
		{Prefix: "/clients", Actions: []Action{ActionWrite}, AnyOf: []string{domain.RoleAdmin}},
		{Prefix: "/users", AnyOf: []string{domain.RoleAdmin}},
	}
}

// AuthorizationPolicy decides whether a role set may perform an action on a
// resource path.
type AuthorizationPolicy struct {
	rules []compiledRule
}

// NewAuthorizationPolicy compiles rules. With no rules every resource only
// requires an authenticated principal.
func NewAuthorizationPolicy(rules ...AccessRule) *AuthorizationPolicy {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, compiledRule{AccessRule: r, segments: splitPath(r.Prefix)})
	}
	return &AuthorizationPolicy{rules: compiled}
}

// IsAllowed applies the most specific rule whose prefix covers resource and
// which governs action. Resources no rule covers need any role.
func (p *AuthorizationPolicy) IsAllowed(roles []string, action Action, resource string) bool {
	segments := splitPath(resource)

	var best *compiledRule
	for i := range p.rules {
		r := &p.rules[i]
		if !r.appliesTo(action) || !r.matches(segments) {
			continue
		}
		if best == nil || len(r.segments) > len(best.segments) {
			best = r
		}
	}

	if best == nil {
		return len(roles) > 0
	}
	return best.permits(roles)
}

// IsPublic reports whether resource is reachable without a principal.
func (p *AuthorizationPolicy) IsPublic(action Action, resource string) bool {
	return p.IsAllowed(nil, action, resource)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

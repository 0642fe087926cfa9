package middlewares

import (
	"net/http"
	"strings"
)

// Rule exempts requests from token checks. An empty Methods set matches any method.
type Rule struct {
	Match   func(path string) bool
	Methods []string
}

// PrefixRule matches every path that starts with prefix.
func PrefixRule(prefix string, methods ...string) Rule {
	return Rule{
		Match:   func(path string) bool { return strings.HasPrefix(path, prefix) },
		Methods: methods,
	}
}

// ExactRule matches one literal path.
func ExactRule(literal string, methods ...string) Rule {
	return Rule{
		Match:   func(path string) bool { return path == literal },
		Methods: methods,
	}
}

func (r Rule) Allows(method, path string) bool {
	if !r.Match(path) {
		return false
	}
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// AllowList is evaluated in order; the first rule that allows the request wins.
type AllowList []Rule

func (l AllowList) Allows(method, path string) bool {
	for _, r := range l {
		if r.Allows(method, path) {
			return true
		}
	}
	return false
}

// DefaultAllowList leaves catalog reads and the login/registration routes public.
func DefaultAllowList(apiURL string) AllowList {
	readOnly := []string{http.MethodGet, http.MethodOptions}
	return AllowList{
		PrefixRule(apiURL+"/products", readOnly...),
		PrefixRule(apiURL+"/categories", readOnly...),
		ExactRule(apiURL + "/users/login"),
		ExactRule(apiURL + "/users/register"),
	}
}

// Package responder maps a query to a canned answer. There is no model behind
// it: rules are checked in order against the lower-cased query and the first
// rule with a matching keyword wins.
package responder

import "strings"

// Rule answers any query containing one of its keywords.
type Rule struct {
	Any    []string `yaml:"any"`
	Answer string   `yaml:"answer"`
}

// Responder holds an ordered rule list and the fallback answer.
type Responder struct {
	rules    []Rule
	fallback string
}

// New copies the rules, lower-casing their keywords.
func New(rules []Rule, fallback string) *Responder {
	copied := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Any))
		for _, kw := range rule.Any {
			if kw == "" {
				continue
			}
			keywords = append(keywords, strings.ToLower(kw))
		}
		copied = append(copied, Rule{Any: keywords, Answer: rule.Answer})
	}
	return &Responder{rules: copied, fallback: fallback}
}

// Answer returns the first matching canned answer, or the fallback.
func (r *Responder) Answer(query string) string {
	q := strings.ToLower(query)
	for _, rule := range r.rules {
		for _, kw := range rule.Any {
			if strings.Contains(q, kw) {
				return rule.Answer
			}
		}
	}
	return r.fallback
}

package dataType

import "strings"

// DomainRule is one allow-list entry.
type DomainRule struct {
	Pattern string
	Next    *DomainRule
}

// DomainRuleList struct LinkedList
type DomainRuleList struct {
	Head *DomainRule
}

// Append add a rule to the end of the list
func (l *DomainRuleList) Append(rule *DomainRule) {
	if l.Head == nil {
		l.Head = rule
		return
	}
	current := l.Head
	for current.Next != nil {
		current = current.Next
	}
	current.Next = rule
}

// Empty reports whether the list has no rules.
func (l *DomainRuleList) Empty() bool {
	return l == nil || l.Head == nil
}

// Match reports whether the hostname contains any listed domain as a
// substring.
func (l *DomainRuleList) Match(hostname string) bool {
	hostname = strings.ToLower(hostname)
	current := l.Head
	for current != nil {
		if current.Pattern != "" && strings.Contains(hostname, strings.ToLower(current.Pattern)) {
			return true
		}
		current = current.Next
	}
	return false
}

// MatchOrigin reports whether the hostname equals a listed domain or is a
// subdomain of one. Used for the CORS boundary, which is stricter than the
// substring gate.
func (l *DomainRuleList) MatchOrigin(hostname string) bool {
	hostname = strings.ToLower(hostname)
	current := l.Head
	for current != nil {
		pattern := strings.ToLower(strings.TrimSpace(current.Pattern))
		if pattern != "" {
			if hostname == pattern || strings.HasSuffix(hostname, "."+pattern) {
				return true
			}
		}
		current = current.Next
	}
	return false
}

package dataType

import (
	"testing"
)

func TestTrie_LiteralAndCIDR(t *testing.T) {
	trie := &TrieNode{}
	trie.InsertString("203.0.113.9")
	trie.InsertString("198.51.100.0/24")
	trie.InsertString("not-an-ip") // skipped

	if !trie.SearchString("203.0.113.9") {
		t.Error("Expected literal entry to match")
	}
	if !trie.SearchString("198.51.100.200") {
		t.Error("Expected CIDR entry to match")
	}
	if trie.SearchString("203.0.113.10") {
		t.Error("Neighbouring IP must not match a /32 entry")
	}
	if trie.SearchString("not-an-ip") {
		t.Error("Unparseable input must not match")
	}
}

func TestTrie_IPv6(t *testing.T) {
	trie := &TrieNode{}
	trie.InsertString("2001:db8::9")
	trie.InsertString("2001:db8:1::/48")

	if !trie.SearchString("2001:db8::9") {
		t.Error("Expected IPv6 literal entry to match")
	}
	if !trie.SearchString("2001:db8:1:2::7") {
		t.Error("Expected IPv6 CIDR entry to match")
	}
	if trie.SearchString("2001:db8::a") {
		t.Error("Neighbouring IPv6 address must not match a /128 entry")
	}
	if trie.SearchString("2001:db9::9") {
		t.Error("Address outside the prefix must not match")
	}
}

func TestTrie_MixedFamilies(t *testing.T) {
	trie := &TrieNode{}
	trie.InsertString("203.0.113.9")
	trie.InsertString("2001:db8::9")

	if !trie.SearchString("203.0.113.9") || !trie.SearchString("2001:db8::9") {
		t.Error("Both families must coexist in one trie")
	}
	if trie.SearchString("::ffff:203.0.113.10") {
		t.Error("Mapped neighbour must not match")
	}
	if !trie.SearchString("::ffff:203.0.113.9") {
		t.Error("The v4-mapped form of a listed IPv4 address must match")
	}
}

func TestDomainRuleList_Match(t *testing.T) {
	list := &DomainRuleList{}
	list.Append(&DomainRule{Pattern: "example.com"})
	list.Append(&DomainRule{Pattern: "shop.test"})

	if !list.Match("landing.example.com") {
		t.Error("Expected substring match on hostname")
	}
	if !list.Match("EXAMPLE.COM") {
		t.Error("Matching must be case-insensitive")
	}
	if list.Match("other.site") {
		t.Error("Unlisted hostname must not match")
	}
}

func TestDomainRuleList_MatchOrigin(t *testing.T) {
	list := &DomainRuleList{}
	list.Append(&DomainRule{Pattern: "example.com"})

	if !list.MatchOrigin("example.com") {
		t.Error("Exact origin must match")
	}
	if !list.MatchOrigin("app.example.com") {
		t.Error("Subdomain origin must match")
	}
	if list.MatchOrigin("evilexample.com") {
		t.Error("Origin matching requires a dot boundary")
	}

	var empty *DomainRuleList
	if !empty.Empty() {
		t.Error("Nil list is empty")
	}
}

func TestCounter_AddAndQuery(t *testing.T) {
	counter := NewCounter(4, 60)

	for i := 0; i < 5; i++ {
		counter.Add("client-a", 1)
	}
	counter.Add("client-b", 1)

	if got := counter.Query("client-a", 60); got != 5 {
		t.Errorf("Expected 5 hits for client-a, got %d", got)
	}
	if got := counter.Query("client-b", 60); got != 1 {
		t.Errorf("Expected 1 hit for client-b, got %d", got)
	}
	if got := counter.Query("client-c", 60); got != 0 {
		t.Errorf("Expected 0 hits for unseen client, got %d", got)
	}

	counter.Reset("client-a")
	if got := counter.Query("client-a", 60); got != 0 {
		t.Errorf("Expected 0 hits after reset, got %d", got)
	}
}

package dataType

import (
	"net"
	"strings"
)

// TrieNode is a bit-trie over IP prefixes. Addresses are normalized to
// their 16-byte form, so IPv4 entries live in the v4-mapped space and both
// families share one lookup. Literal IPs are held as full-length entries,
// so plain membership and CIDR ranges share one lookup too.
type TrieNode struct {
	children [2]*TrieNode
	isEnd    bool
}

// Insert adds an IP network to the trie.
func (node *TrieNode) Insert(ipNet *net.IPNet) {
	ip := ipNet.IP.To16()
	if ip == nil {
		return
	}
	ones, bits := ipNet.Mask.Size()
	if bits == 32 {
		ones += 96
	}
	current := node
	for i := 0; i < ones; i++ {
		bit := (ip[i/8] >> (7 - uint(i%8))) & 1
		if current.children[bit] == nil {
			current.children[bit] = &TrieNode{}
		}
		current = current.children[bit]
	}
	current.isEnd = true
}

// InsertString adds a literal IP or CIDR entry. Entries that do not parse
// are skipped.
func (node *TrieNode) InsertString(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}
	if !strings.Contains(entry, "/") {
		if strings.Contains(entry, ":") {
			entry = entry + "/128"
		} else {
			entry = entry + "/32"
		}
	}
	_, ipNet, err := net.ParseCIDR(entry)
	if err != nil {
		return
	}
	node.Insert(ipNet)
}

// Search reports whether the ip falls inside any inserted entry.
func (node *TrieNode) Search(ip net.IP) bool {
	ip = ip.To16()
	if ip == nil {
		return false
	}
	current := node
	for i := 0; i < 128; i++ {
		if current.isEnd {
			return true
		}
		bit := (ip[i/8] >> (7 - uint(i%8))) & 1
		if current.children[bit] == nil {
			return false
		}
		current = current.children[bit]
	}
	return current.isEnd
}

// SearchString parses and searches a literal IP.
func (node *TrieNode) SearchString(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return node.Search(parsed)
}

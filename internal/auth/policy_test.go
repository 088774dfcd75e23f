//go:build unit

package auth

import "testing"

type ownedBy string

func (o ownedBy) Owner() string { return string(o) }

func TestCan(t *testing.T) {
	testCases := []struct {
		name     string
		identity string
		action   Action
		owner    string
		want     bool
	}{
		{"author can update", "alice", ActionUpdate, "alice", true},
		{"author can delete", "alice", ActionDelete, "alice", true},
		{"question author can accept", "alice", ActionAccept, "alice", true},
		{"other user cannot update", "bob", ActionUpdate, "alice", false},
		{"other user cannot delete", "bob", ActionDelete, "alice", false},
		{"answer author cannot accept on another's question", "bob", ActionAccept, "alice", false},
		{"anonymous cannot update", Anonymous, ActionUpdate, "alice", false},
		{"empty identity cannot delete", "", ActionDelete, "alice", false},
		{"anonymous owner grants nothing", Anonymous, ActionUpdate, Anonymous, false},
		{"unknown action is denied", "alice", Action("publish"), "alice", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.identity, tc.action, ownedBy(tc.owner)); got != tc.want {
				t.Errorf("Can(%q, %q, owner %q) = %v, want %v", tc.identity, tc.action, tc.owner, got, tc.want)
			}
		})
	}
}

package game

import (
	"testing"

	"github.com/jmcaldera/quizwire/internal/errors"
)

// TestRegisterAdmin_Idempotent tests that identifying twice reuses the player
func TestRegisterAdmin_Idempotent(t *testing.T) {
	r := NewRegistry(10)

	first := r.RegisterAdmin("conn-1234-abcd")
	second := r.RegisterAdmin("conn-1234-abcd")

	if first != second {
		t.Error("RegisterAdmin should be idempotent per connection")
	}
	if first.Name != "Admin-conn" {
		t.Errorf("admin name = %q, want Admin-conn", first.Name)
	}
	if !first.IsAdmin() {
		t.Error("registered admin should have the admin role")
	}
}

// TestRegisterContestant_NameTooShort tests the minimum name length
func TestRegisterContestant_NameTooShort(t *testing.T) {
	r := NewRegistry(10)

	for _, name := range []string{"", "ab", "  ab  ", " \t "} {
		if _, err := r.RegisterContestant("c1", name); err == nil {
			t.Errorf("RegisterContestant(%q) should fail", name)
		} else if errors.KindOf(err) != errors.ErrValidation {
			t.Errorf("RegisterContestant(%q) kind = %v, want validation", name, errors.KindOf(err))
		}
	}
}

// TestRegisterContestant_NameTaken tests case-insensitive name exclusivity
func TestRegisterContestant_NameTaken(t *testing.T) {
	r := NewRegistry(10)

	if _, err := r.RegisterContestant("c1", "Alice"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := r.RegisterContestant("c2", "ALICE")
	if err == nil {
		t.Fatal("names differing only by case must not coexist")
	}
	if errors.KindOf(err) != errors.ErrConflict {
		t.Errorf("kind = %v, want conflict", errors.KindOf(err))
	}

	// The name frees up once its owner leaves.
	r.Unregister("c1")
	if _, err := r.RegisterContestant("c2", "alice"); err != nil {
		t.Errorf("name should be reusable after disconnect: %v", err)
	}
}

// TestRegisterContestant_RosterFull tests the contestant cap
func TestRegisterContestant_RosterFull(t *testing.T) {
	r := NewRegistry(2)
	r.RegisterAdmin("admin") // admins do not count toward the cap

	if _, err := r.RegisterContestant("c1", "Alice"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if _, err := r.RegisterContestant("c2", "Bob"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, err := r.RegisterContestant("c3", "Carol")
	if err == nil {
		t.Fatal("registration beyond the cap should fail")
	}
	if errors.KindOf(err) != errors.ErrConflict {
		t.Errorf("kind = %v, want conflict", errors.KindOf(err))
	}
}

// TestContestants_ExcludesAdmins tests contestant listing
func TestContestants_ExcludesAdmins(t *testing.T) {
	r := NewRegistry(10)
	r.RegisterAdmin("admin")
	r.RegisterContestant("c1", "Alice")
	r.RegisterContestant("c2", "Bob")

	contestants := r.Contestants()
	if len(contestants) != 2 {
		t.Fatalf("Contestants() returned %d players, want 2", len(contestants))
	}
	if contestants[0].Name != "Alice" || contestants[1].Name != "Bob" {
		t.Errorf("contestants out of registration order: %s, %s", contestants[0].Name, contestants[1].Name)
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
}

// TestRankContestants tests the score/time ordering used for final results
func TestRankContestants(t *testing.T) {
	r := NewRegistry(10)
	a, _ := r.RegisterContestant("a", "PlayerA")
	b, _ := r.RegisterContestant("b", "PlayerB")
	c, _ := r.RegisterContestant("c", "PlayerC")

	a.Score, a.LastResponseTime = 20, 5
	b.Score, b.LastResponseTime = 20, 3
	c.Score, c.LastResponseTime = 30, 9

	ranked := rankContestants(r.Snapshot())
	var names []string
	for _, p := range ranked {
		names = append(names, p.Name)
	}

	// Higher score first; equal scores broken by faster response.
	want := []string{"PlayerC", "PlayerB", "PlayerA"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", names, want)
		}
	}
}

package server

import (
	"testing"
	"time"
)

func testGuard() Guard {
	return Guard{Window: 10 * time.Second, Burst: 5, Cooldown: 10 * time.Second}
}

func TestAllowMessageBurstWindow(t *testing.T) {
	g := testGuard()
	s := &Session{}
	base := time.Now()

	// Six sends inside nine seconds: exactly five pass.
	allowed := 0
	for i := 0; i < 6; i++ {
		if g.AllowMessage(s, base.Add(time.Duration(i)*1500*time.Millisecond)) {
			allowed++
		}
	}
	if allowed != 5 {
		t.Fatalf("allowed = %d, want 5", allowed)
	}
}

func TestAllowMessageWindowSlides(t *testing.T) {
	g := testGuard()
	s := &Session{}
	base := time.Now()

	for i := 0; i < 5; i++ {
		if !g.AllowMessage(s, base.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("send %d denied inside burst", i)
		}
	}
	if g.AllowMessage(s, base.Add(9*time.Second)) {
		t.Fatal("sixth send inside the window allowed")
	}
	// The first send has aged out by now.
	if !g.AllowMessage(s, base.Add(10500*time.Millisecond)) {
		t.Fatal("send denied after window slid past the oldest entry")
	}
}

func TestDeniedSendsDoNotExtendWindow(t *testing.T) {
	g := testGuard()
	s := &Session{}
	base := time.Now()

	for i := 0; i < 5; i++ {
		g.AllowMessage(s, base)
	}
	// Hammering while limited must not push the window forward.
	for i := 0; i < 20; i++ {
		g.AllowMessage(s, base.Add(5*time.Second))
	}
	if !g.AllowMessage(s, base.Add(10100*time.Millisecond)) {
		t.Fatal("denied sends extended the rate window")
	}
}

func TestAllowNudgeCooldown(t *testing.T) {
	g := testGuard()
	s := &Session{}
	base := time.Now()

	if !g.AllowNudge(s, base) {
		t.Fatal("first nudge denied")
	}
	if g.AllowNudge(s, base.Add(9900*time.Millisecond)) {
		t.Fatal("nudge allowed inside cooldown")
	}
	if !g.AllowNudge(s, base.Add(20*time.Second)) {
		t.Fatal("nudge denied after cooldown")
	}
}

package scheduler

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, fired <-chan string, want string) {
	t.Helper()
	select {
	case got := <-fired:
		if got != want {
			t.Fatalf("Expected %q to fire, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Deadline %q never fired", want)
	}
}

func expectSilence(t *testing.T, fired <-chan string, d time.Duration) {
	t.Helper()
	select {
	case got := <-fired:
		t.Fatalf("Unexpected firing of %q", got)
	case <-time.After(d):
	}
}

func TestArmFires(t *testing.T) {
	s := newWithResolution(5 * time.Millisecond)
	defer s.Stop()

	fired := make(chan string, 8)
	s.Arm("g1", ClassChooseCard, 20*time.Millisecond, func() { fired <- "card" })

	waitFor(t, fired, "card")
}

func TestRearmReplacesSameClass(t *testing.T) {
	s := newWithResolution(5 * time.Millisecond)
	defer s.Stop()

	fired := make(chan string, 8)
	s.Arm("g1", ClassChooseCard, 30*time.Millisecond, func() { fired <- "first" })
	s.Arm("g1", ClassChooseCard, 30*time.Millisecond, func() { fired <- "second" })

	waitFor(t, fired, "second")
	expectSilence(t, fired, 200*time.Millisecond)
}

func TestClassesAreIndependent(t *testing.T) {
	s := newWithResolution(5 * time.Millisecond)
	defer s.Stop()

	fired := make(chan string, 8)
	s.Arm("g1", ClassChooseCard, 20*time.Millisecond, func() { fired <- "card" })
	s.Arm("g1", ClassChooseStack, 120*time.Millisecond, func() { fired <- "stack" })

	waitFor(t, fired, "card")
	waitFor(t, fired, "stack")
}

func TestCancel(t *testing.T) {
	s := newWithResolution(5 * time.Millisecond)
	defer s.Stop()

	fired := make(chan string, 8)
	s.Arm("g1", ClassChooseCard, 30*time.Millisecond, func() { fired <- "card" })
	s.Cancel("g1", ClassChooseCard)

	expectSilence(t, fired, 200*time.Millisecond)
}

func TestCancelAllDropsBothClasses(t *testing.T) {
	s := newWithResolution(5 * time.Millisecond)
	defer s.Stop()

	fired := make(chan string, 8)
	s.Arm("g1", ClassChooseCard, 30*time.Millisecond, func() { fired <- "g1-card" })
	s.Arm("g1", ClassChooseStack, 30*time.Millisecond, func() { fired <- "g1-stack" })
	s.Arm("g2", ClassChooseCard, 60*time.Millisecond, func() { fired <- "g2-card" })
	s.CancelAll("g1")

	// g2 is untouched by g1's cancellation.
	waitFor(t, fired, "g2-card")
	expectSilence(t, fired, 200*time.Millisecond)
}

func TestClassString(t *testing.T) {
	if ClassChooseCard.String() != "choose_card" {
		t.Errorf("Unexpected name %q", ClassChooseCard.String())
	}
	if ClassChooseStack.String() != "choose_stack" {
		t.Errorf("Unexpected name %q", ClassChooseStack.String())
	}
}

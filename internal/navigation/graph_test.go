package navigation

import (
	"errors"
	"testing"
)

func TestStorefrontGraph_EveryTargetIsReachableScreen(t *testing.T) {
	g := NewStorefrontGraph()

	sources := map[Screen]bool{}
	for _, e := range g.Edges() {
		sources[e.From] = true
	}
	for _, e := range g.Edges() {
		if e.Policy == HistoryPop {
			if e.To != "" {
				t.Fatalf("pop edge %s --%s--> must not name a target", e.From, e.Action)
			}
			continue
		}
		if !sources[e.To] {
			t.Fatalf("edge %s --%s--> leads to dead-end screen %s", e.From, e.Action, e.To)
		}
	}
}

func TestGraphTransition(t *testing.T) {
	g := NewStorefrontGraph()

	tests := []struct {
		from   Screen
		action Action
		to     Screen
		policy HistoryPolicy
	}{
		{ScreenIntroduction, ActionRegister, ScreenRegister, HistoryPush},
		{ScreenIntroduction, ActionLogin, ScreenLogin, HistoryPush},
		{ScreenRegister, ActionRegisterSuccess, ScreenHome, HistoryReplaceAll},
		{ScreenLogin, ActionLoginSuccess, ScreenHome, HistoryReplaceAll},
		{ScreenProfile, ActionLogout, ScreenIntroduction, HistoryPopToRoot},
		{ScreenCheckout, ActionPlaceOrder, ScreenConfirmation, HistoryReplace},
		{ScreenConfirmation, ActionTrackOrder, ScreenTrackOrders, HistoryPush},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"/"+string(tc.action), func(t *testing.T) {
			e, err := g.Transition(tc.from, tc.action)
			if err != nil {
				t.Fatalf("transition: %v", err)
			}
			if e.To != tc.to || e.Policy != tc.policy {
				t.Fatalf("got (%s, %s), want (%s, %s)", e.To, e.Policy, tc.to, tc.policy)
			}
		})
	}

	if _, err := g.Transition(ScreenHome, ActionLogout); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestNewGraphRejectsDuplicates(t *testing.T) {
	_, err := NewGraph(ScreenHome, []Edge{
		{ScreenHome, ActionOpenCart, ScreenCart, HistoryPush},
		{ScreenHome, ActionOpenCart, ScreenProducts, HistoryPush},
	})
	if err == nil {
		t.Fatal("expected duplicate edge error")
	}

	_, err = NewGraph(ScreenHome, []Edge{{ScreenHome, ActionOpenCart, "", HistoryPush}})
	if err == nil {
		t.Fatal("expected missing target error")
	}
}

func TestGraphActions(t *testing.T) {
	g := NewStorefrontGraph()
	got := g.Actions(ScreenProfile)
	want := []Action{ActionBack, ActionAllOrders, ActionTrackOrders, ActionLogout}
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("actions = %v, want %v", got, want)
		}
	}
}

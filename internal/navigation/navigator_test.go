package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/navigation"
)

func walk(t *testing.T, n *navigation.Navigator, actions ...navigation.Action) {
	t.Helper()
	for _, a := range actions {
		_, err := n.Dispatch(a)
		require.NoError(t, err, "action %s on %s", a, n.Current())
	}
}

func TestNavigator_LoginThenLogoutClearsHistory(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())
	require.Equal(t, navigation.ScreenIntroduction, n.Current())

	walk(t, n, navigation.ActionLogin, navigation.ActionLoginSuccess)
	require.Equal(t, navigation.ScreenHome, n.Current())
	require.Equal(t, []navigation.Screen{navigation.ScreenHome}, n.History(), "login must clear introduction")

	walk(t, n, navigation.ActionOpenProfile, navigation.ActionLogout)
	require.Equal(t, navigation.ScreenIntroduction, n.Current())
	require.False(t, n.CanGoBack())

	screen, ok := n.Back()
	require.False(t, ok)
	require.Equal(t, navigation.ScreenIntroduction, screen)
}

func TestNavigator_RegisterFlow(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())

	walk(t, n, navigation.ActionRegister)
	require.Equal(t, []navigation.Screen{navigation.ScreenIntroduction, navigation.ScreenRegister}, n.History())

	walk(t, n, navigation.ActionBack)
	require.Equal(t, navigation.ScreenIntroduction, n.Current())

	walk(t, n, navigation.ActionRegister, navigation.ActionRegisterSuccess)
	require.Equal(t, []navigation.Screen{navigation.ScreenHome}, n.History())
}

func TestNavigator_CheckoutFlow(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())
	walk(t, n,
		navigation.ActionLogin, navigation.ActionLoginSuccess,
		navigation.ActionOpenProducts, navigation.ActionOpenCart, navigation.ActionCheckout,
	)
	require.Equal(t, []navigation.Screen{
		navigation.ScreenHome, navigation.ScreenProducts, navigation.ScreenCart, navigation.ScreenCheckout,
	}, n.History())

	walk(t, n, navigation.ActionPlaceOrder)
	require.Equal(t, navigation.ScreenConfirmation, n.Current())
	require.Len(t, n.History(), 4, "confirmation replaces checkout in place")

	walk(t, n, navigation.ActionTrackOrder)
	require.Equal(t, navigation.ScreenTrackOrders, n.Current())

	walk(t, n, navigation.ActionBack)
	require.Equal(t, navigation.ScreenConfirmation, n.Current())

	walk(t, n, navigation.ActionBackToHome)
	require.Equal(t, []navigation.Screen{navigation.ScreenHome}, n.History())
}

func TestNavigator_BackToHomeFromTabs(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())
	walk(t, n, navigation.ActionLogin, navigation.ActionLoginSuccess, navigation.ActionOpenProducts, navigation.ActionOpenCart)

	walk(t, n, navigation.ActionBack)
	require.Equal(t, []navigation.Screen{navigation.ScreenHome}, n.History(), "cart back pops to root instead of stacking home")
}

func TestNavigator_SystemBackFollowsScreenBackAction(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())
	walk(t, n, navigation.ActionLogin, navigation.ActionLoginSuccess, navigation.ActionOpenProducts, navigation.ActionOpenCart)

	screen, ok := n.Back()
	require.True(t, ok)
	require.Equal(t, navigation.ScreenHome, screen)
	require.Equal(t, []navigation.Screen{navigation.ScreenHome}, n.History())

	_, ok = n.Back()
	require.False(t, ok, "home has no back action and nothing below it")

	walk(t, n, navigation.ActionOpenCart, navigation.ActionCheckout)
	screen, ok = n.Back()
	require.True(t, ok)
	require.Equal(t, navigation.ScreenCart, screen, "checkout back pops one screen")
}

func TestNavigator_InvalidTransition(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())

	_, err := n.Dispatch(navigation.ActionLogout)
	require.ErrorIs(t, err, navigation.ErrInvalidTransition)
	require.Equal(t, navigation.ScreenIntroduction, n.Current(), "failed transition must not move")

	require.Panics(t, func() { n.MustDispatch(navigation.ActionPlaceOrder) })
	require.Panics(t, func() { n.MustResolve(navigation.ActionCheckout) })
}

func TestNavigator_ApplyRejectsForeignEdge(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())
	edge, err := navigation.NewStorefrontGraph().Transition(navigation.ScreenCart, navigation.ActionCheckout)
	require.NoError(t, err)

	_, err = n.Apply(edge)
	require.ErrorIs(t, err, navigation.ErrInvalidTransition)
}

func TestNavigator_Reset(t *testing.T) {
	n := navigation.NewNavigator(navigation.NewStorefrontGraph())
	walk(t, n, navigation.ActionLogin, navigation.ActionLoginSuccess, navigation.ActionOpenCart)

	n.Reset()
	require.Equal(t, []navigation.Screen{navigation.ScreenIntroduction}, n.History())
}

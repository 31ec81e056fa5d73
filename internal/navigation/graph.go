// Package navigation описывает закрытый граф экранов витрины и стек возврата.
package navigation

import (
	"errors"
	"fmt"
)

type Screen string

const (
	ScreenIntroduction Screen = "introduction"
	ScreenRegister     Screen = "register"
	ScreenLogin        Screen = "login"
	ScreenHome         Screen = "home"
	ScreenProducts     Screen = "products"
	ScreenCart         Screen = "cart"
	ScreenCheckout     Screen = "checkout"
	ScreenConfirmation Screen = "confirmation"
	ScreenAllOrders    Screen = "all-orders"
	ScreenTrackOrders  Screen = "track-orders"
	ScreenProfile      Screen = "profile"
)

type Action string

const (
	ActionRegister        Action = "register"
	ActionLogin           Action = "login"
	ActionBack            Action = "back"
	ActionRegisterSuccess Action = "register-success"
	ActionLoginSuccess    Action = "login-success"
	ActionOpenProducts    Action = "open-products"
	ActionOpenCart        Action = "open-cart"
	ActionOpenProfile     Action = "open-profile"
	ActionCheckout        Action = "checkout"
	ActionPlaceOrder      Action = "place-order"
	ActionTrackOrder      Action = "track-order"
	ActionBackToHome      Action = "back-to-home"
	ActionAllOrders       Action = "all-orders"
	ActionTrackOrders     Action = "track-orders"
	ActionLogout          Action = "logout"
)

// HistoryPolicy задаёт, как переход меняет стек возврата.
type HistoryPolicy string

const (
	// HistoryPush кладёт целевой экран поверх текущего.
	HistoryPush HistoryPolicy = "push"
	// HistoryPop снимает текущий экран, целью становится предыдущий.
	HistoryPop HistoryPolicy = "pop"
	// HistoryReplace заменяет текущий экран на месте.
	HistoryReplace HistoryPolicy = "replace"
	// HistoryReplaceAll сбрасывает поток входа: в стеке остаётся только цель.
	HistoryReplaceAll HistoryPolicy = "replace-all"
	// HistoryPopToRoot возвращает к корню; если корень не совпадает с целью,
	// стек очищается полностью и цель становится новым корнем.
	HistoryPopToRoot HistoryPolicy = "pop-to-root"
)

// ErrInvalidTransition — действие не определено для текущего экрана.
var ErrInvalidTransition = errors.New("invalid navigation transition")

// Edge — ребро графа: (From, Action) → To с политикой истории.
// Для HistoryPop поле To пустое: цель определяется стеком.
type Edge struct {
	From   Screen
	Action Action
	To     Screen
	Policy HistoryPolicy
}

type edgeKey struct {
	from   Screen
	action Action
}

// Graph — неизменяемая таблица переходов.
type Graph struct {
	start Screen
	edges map[edgeKey]Edge
	order []Edge
}

// NewGraph строит граф из таблицы рёбер. Дубликаты пар (экран, действие)
// и рёбра без цели (кроме pop) считаются ошибкой конфигурации.
func NewGraph(start Screen, edges []Edge) (*Graph, error) {
	g := &Graph{
		start: start,
		edges: make(map[edgeKey]Edge, len(edges)),
		order: make([]Edge, 0, len(edges)),
	}
	for _, e := range edges {
		key := edgeKey{from: e.From, action: e.Action}
		if _, dup := g.edges[key]; dup {
			return nil, fmt.Errorf("duplicate edge %s --%s-->", e.From, e.Action)
		}
		if e.Policy != HistoryPop && e.To == "" {
			return nil, fmt.Errorf("edge %s --%s--> has no target", e.From, e.Action)
		}
		g.edges[key] = e
		g.order = append(g.order, e)
	}
	return g, nil
}

// Start возвращает стартовый экран.
func (g *Graph) Start() Screen { return g.start }

// Transition возвращает ребро для пары (экран, действие) или ErrInvalidTransition.
func (g *Graph) Transition(current Screen, action Action) (Edge, error) {
	e, ok := g.edges[edgeKey{from: current, action: action}]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s --%s-->", ErrInvalidTransition, current, action)
	}
	return e, nil
}

// Actions перечисляет действия, доступные на экране, в порядке таблицы.
func (g *Graph) Actions(screen Screen) []Action {
	var actions []Action
	for _, e := range g.order {
		if e.From == screen {
			actions = append(actions, e.Action)
		}
	}
	return actions
}

// Edges возвращает копию таблицы переходов.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.order...)
}

// StorefrontEdges — таблица переходов витрины.
func StorefrontEdges() []Edge {
	return []Edge{
		{ScreenIntroduction, ActionRegister, ScreenRegister, HistoryPush},
		{ScreenIntroduction, ActionLogin, ScreenLogin, HistoryPush},

		{ScreenRegister, ActionBack, "", HistoryPop},
		{ScreenRegister, ActionRegisterSuccess, ScreenHome, HistoryReplaceAll},

		{ScreenLogin, ActionBack, "", HistoryPop},
		{ScreenLogin, ActionLoginSuccess, ScreenHome, HistoryReplaceAll},

		{ScreenHome, ActionOpenProducts, ScreenProducts, HistoryPush},
		{ScreenHome, ActionOpenCart, ScreenCart, HistoryPush},
		{ScreenHome, ActionOpenProfile, ScreenProfile, HistoryPush},

		{ScreenProducts, ActionBack, ScreenHome, HistoryPopToRoot},
		{ScreenProducts, ActionOpenCart, ScreenCart, HistoryPush},

		{ScreenCart, ActionBack, ScreenHome, HistoryPopToRoot},
		{ScreenCart, ActionCheckout, ScreenCheckout, HistoryPush},

		{ScreenCheckout, ActionBack, "", HistoryPop},
		{ScreenCheckout, ActionPlaceOrder, ScreenConfirmation, HistoryReplace},

		{ScreenConfirmation, ActionTrackOrder, ScreenTrackOrders, HistoryPush},
		{ScreenConfirmation, ActionBackToHome, ScreenHome, HistoryPopToRoot},

		{ScreenProfile, ActionBack, ScreenHome, HistoryPopToRoot},
		{ScreenProfile, ActionAllOrders, ScreenAllOrders, HistoryPush},
		{ScreenProfile, ActionTrackOrders, ScreenTrackOrders, HistoryPush},
		{ScreenProfile, ActionLogout, ScreenIntroduction, HistoryPopToRoot},

		{ScreenAllOrders, ActionBack, "", HistoryPop},
		{ScreenTrackOrders, ActionBack, "", HistoryPop},
	}
}

// NewStorefrontGraph возвращает граф витрины со стартом на экране introduction.
func NewStorefrontGraph() *Graph {
	g, err := NewGraph(ScreenIntroduction, StorefrontEdges())
	if err != nil {
		panic(err)
	}
	return g
}

package navigation

import (
	"errors"
	"fmt"
)

// ErrHistoryEmpty — pop на экране, под которым в стеке ничего нет.
var ErrHistoryEmpty = errors.New("navigation history is empty")

// Navigator хранит текущий экран и стек возврата. Не потокобезопасен:
// владельцем является сессия пользователя.
type Navigator struct {
	graph *Graph
	stack []Screen
}

// NewNavigator создаёт навигатор на стартовом экране графа.
func NewNavigator(graph *Graph) *Navigator {
	return &Navigator{graph: graph, stack: []Screen{graph.Start()}}
}

// Current возвращает экран на вершине стека.
func (n *Navigator) Current() Screen {
	return n.stack[len(n.stack)-1]
}

// History возвращает копию стека от корня к вершине.
func (n *Navigator) History() []Screen {
	return append([]Screen(nil), n.stack...)
}

// CanGoBack сообщает, есть ли экран под текущим.
func (n *Navigator) CanGoBack() bool {
	return len(n.stack) > 1
}

// Resolve находит ребро для действия на текущем экране без изменения состояния.
func (n *Navigator) Resolve(action Action) (Edge, error) {
	return n.graph.Transition(n.Current(), action)
}

// MustResolve как Resolve, но паникует на неизвестном переходе.
func (n *Navigator) MustResolve(action Action) Edge {
	e, err := n.Resolve(action)
	if err != nil {
		panic(err)
	}
	return e
}

// Dispatch выполняет переход и возвращает новый текущий экран.
func (n *Navigator) Dispatch(action Action) (Screen, error) {
	e, err := n.Resolve(action)
	if err != nil {
		return n.Current(), err
	}
	return n.Apply(e)
}

// MustDispatch выполняет переход; неизвестное действие считается ошибкой
// программиста и приводит к панике.
func (n *Navigator) MustDispatch(action Action) Screen {
	s, err := n.Dispatch(action)
	if err != nil {
		panic(err)
	}
	return s
}

// Apply применяет ранее найденное ребро. Ребро должно исходить из текущего экрана.
func (n *Navigator) Apply(e Edge) (Screen, error) {
	if e.From != n.Current() {
		return n.Current(), fmt.Errorf("%w: edge from %s applied on %s", ErrInvalidTransition, e.From, n.Current())
	}

	switch e.Policy {
	case HistoryPush:
		n.stack = append(n.stack, e.To)
	case HistoryPop:
		if !n.CanGoBack() {
			return n.Current(), ErrHistoryEmpty
		}
		n.stack = n.stack[:len(n.stack)-1]
	case HistoryReplace:
		n.stack[len(n.stack)-1] = e.To
	case HistoryReplaceAll:
		n.stack = []Screen{e.To}
	case HistoryPopToRoot:
		if n.stack[0] == e.To {
			n.stack = n.stack[:1]
		} else {
			n.stack = []Screen{e.To}
		}
	default:
		return n.Current(), fmt.Errorf("unsupported history policy %q", e.Policy)
	}

	return n.Current(), nil
}

// Back обрабатывает системную кнопку "назад" так же, как действие back текущего
// экрана: с products, cart и profile это возврат на home, а не на предыдущий экран.
// Без такого ребра снимает вершину стека. Возвращает false, если возвращаться
// некуда (например, на introduction после выхода).
func (n *Navigator) Back() (Screen, bool) {
	if e, err := n.Resolve(ActionBack); err == nil && e.Policy != HistoryPop {
		from, depth := n.Current(), len(n.stack)
		screen, err := n.Apply(e)
		if err != nil {
			return screen, false
		}
		return screen, screen != from || len(n.stack) != depth
	}

	if !n.CanGoBack() {
		return n.Current(), false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return n.Current(), true
}

// Reset возвращает навигатор на стартовый экран с пустой историей.
func (n *Navigator) Reset() {
	n.stack = []Screen{n.graph.Start()}
}

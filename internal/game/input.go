package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/particle-field/internal/scene"
)

// pointerSink receives translated pointer events. *scene.Scene implements it.
type pointerSink interface {
	PointerMove(x, y float64)
	TouchStart(x, y float64)
	TouchMove(x, y float64)
	TouchEnd()
}

var _ pointerSink = (*scene.Scene)(nil)

// touchSource abstracts ebiten's touch queries.
type touchSource interface {
	JustPressed(dst []ebiten.TouchID) []ebiten.TouchID
	Active(dst []ebiten.TouchID) []ebiten.TouchID
	Position(id ebiten.TouchID) (int, int)
	JustReleased(id ebiten.TouchID) bool
}

type ebitenTouches struct{}

func (ebitenTouches) JustPressed(dst []ebiten.TouchID) []ebiten.TouchID {
	return inpututil.AppendJustPressedTouchIDs(dst)
}

func (ebitenTouches) Active(dst []ebiten.TouchID) []ebiten.TouchID {
	return ebiten.AppendTouchIDs(dst)
}

func (ebitenTouches) Position(id ebiten.TouchID) (int, int) { return ebiten.TouchPosition(id) }

func (ebitenTouches) JustReleased(id ebiten.TouchID) bool { return inpututil.IsTouchJustReleased(id) }

// pointerTracker turns per-frame cursor and touch polling into the event
// stream the scene expects. Only the primary (first) contact steers.
type pointerTracker struct {
	lastX, lastY int
	seenCursor   bool

	primary  ebiten.TouchID
	touching bool
	ids      []ebiten.TouchID
}

// cursor reports a mouse position; only movement counts as input.
func (t *pointerTracker) cursor(sink pointerSink, x, y int) {
	if t.seenCursor && x == t.lastX && y == t.lastY {
		return
	}
	if !t.seenCursor {
		t.seenCursor = true
		t.lastX, t.lastY = x, y
		return // initial position is not a move
	}
	t.lastX, t.lastY = x, y
	if t.touching {
		return
	}
	sink.PointerMove(float64(x), float64(y))
}

func (t *pointerTracker) touches(sink pointerSink, src touchSource) {
	if t.touching && src.JustReleased(t.primary) {
		t.touching = false
		sink.TouchEnd()
	}

	if !t.touching {
		t.ids = src.JustPressed(t.ids[:0])
		if len(t.ids) > 0 {
			t.primary = t.ids[0]
			t.touching = true
			x, y := src.Position(t.primary)
			sink.TouchStart(float64(x), float64(y))
		}
		return
	}

	t.ids = src.Active(t.ids[:0])
	for _, id := range t.ids {
		if id == t.primary {
			x, y := src.Position(id)
			sink.TouchMove(float64(x), float64(y))
			return
		}
	}
}

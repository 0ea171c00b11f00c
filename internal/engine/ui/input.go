package ui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/town-links/internal/engine/input"
)

const keyCount = int(input.KeyRight) + 1

// imguiKeys maps the engine keys onto ImGui keys.
var imguiKeys = map[input.Key]imgui.Key{
	input.KeyEscape: imgui.KeyEscape,
	input.KeySpace:  imgui.KeySpace,
	input.KeyW:      imgui.KeyW,
	input.KeyA:      imgui.KeyA,
	input.KeyS:      imgui.KeyS,
	input.KeyD:      imgui.KeyD,
	input.KeyUp:     imgui.KeyUpArrow,
	input.KeyDown:   imgui.KeyDownArrow,
	input.KeyLeft:   imgui.KeyLeftArrow,
	input.KeyRight:  imgui.KeyRightArrow,
}

// noMouse is the bound below which ImGui reports an unavailable mouse.
const noMouse = -1e30

// snapshot is the input state ImGui reports for one frame.
type snapshot struct {
	width, height  int
	mouseX, mouseY float64
	down           [keyCount]bool
}

// tracker turns successive snapshots into edge events.
type tracker struct {
	last snapshot
}

func (t *tracker) update(s snapshot) []input.Event {
	var events []input.Event

	if s.width != t.last.width || s.height != t.last.height {
		events = append(events, input.Event{Type: input.EventWindowResize, Width: s.width, Height: s.height})
	}

	if s.mouseX > noMouse && s.mouseY > noMouse &&
		(s.mouseX != t.last.mouseX || s.mouseY != t.last.mouseY) {
		events = append(events, input.Event{Type: input.EventMouseMove, MouseX: s.mouseX, MouseY: s.mouseY})
	} else if s.mouseX <= noMouse || s.mouseY <= noMouse {
		s.mouseX, s.mouseY = t.last.mouseX, t.last.mouseY
	}

	for k := range s.down {
		switch {
		case s.down[k] && !t.last.down[k]:
			events = append(events, input.Event{Type: input.EventKeyDown, Key: input.Key(k)})
		case !s.down[k] && t.last.down[k]:
			events = append(events, input.Event{Type: input.EventKeyUp, Key: input.Key(k)})
		}
	}

	t.last = s
	return events
}

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/town-links/internal/engine/input"
	"github.com/Faultbox/town-links/internal/engine/renderer"
	"github.com/Faultbox/town-links/internal/engine/rendermode"
)

func TestTrackerFirstSnapshot(t *testing.T) {
	var tr tracker
	events := tr.update(snapshot{width: 800, height: 600, mouseX: 10, mouseY: 20})

	assert.Equal(t, []input.Event{
		{Type: input.EventWindowResize, Width: 800, Height: 600},
		{Type: input.EventMouseMove, MouseX: 10, MouseY: 20},
	}, events)
}

func TestTrackerReportsOnlyChanges(t *testing.T) {
	var tr tracker
	s := snapshot{width: 800, height: 600, mouseX: 10, mouseY: 20}
	tr.update(s)

	assert.Empty(t, tr.update(s))

	s.mouseX = 15
	assert.Equal(t, []input.Event{{Type: input.EventMouseMove, MouseX: 15, MouseY: 20}}, tr.update(s))

	s.width, s.height = 1024, 768
	assert.Equal(t, []input.Event{{Type: input.EventWindowResize, Width: 1024, Height: 768}}, tr.update(s))
}

func TestTrackerKeyEdges(t *testing.T) {
	var tr tracker
	s := snapshot{width: 800, height: 600, mouseX: 1, mouseY: 1}
	tr.update(s)

	s.down[input.KeySpace] = true
	s.down[input.KeyW] = true
	assert.Equal(t, []input.Event{
		{Type: input.EventKeyDown, Key: input.KeySpace},
		{Type: input.EventKeyDown, Key: input.KeyW},
	}, tr.update(s))

	assert.Empty(t, tr.update(s), "held keys do not repeat")

	s.down[input.KeySpace] = false
	assert.Equal(t, []input.Event{{Type: input.EventKeyUp, Key: input.KeySpace}}, tr.update(s))
}

func TestTrackerIgnoresMissingMouse(t *testing.T) {
	var tr tracker
	tr.update(snapshot{width: 800, height: 600, mouseX: 30, mouseY: 40})

	gone := snapshot{width: 800, height: 600, mouseX: -3.4e38, mouseY: -3.4e38}
	assert.Empty(t, tr.update(gone))

	back := snapshot{width: 800, height: 600, mouseX: 30, mouseY: 40}
	assert.Empty(t, tr.update(back), "position unchanged since the mouse left")
}

func TestKeyMapCoversEngineKeys(t *testing.T) {
	for k := input.KeyEscape; k <= input.KeyRight; k++ {
		_, ok := imguiKeys[k]
		assert.True(t, ok, "key %d has no ImGui mapping", k)
	}
	_, ok := imguiKeys[input.KeyUnknown]
	assert.False(t, ok)
}

func TestPanelLines(t *testing.T) {
	lines := panelLines(renderer.FrameInfo{
		Index:   42,
		Width:   1024,
		Height:  768,
		Mode:    rendermode.C,
		CursorX: 512,
		CursorY: 384.3,
	})

	assert.Equal(t, "Mouse position: (512.0, 384.3)", lines[0])
	assert.Equal(t, "Mode: C", lines[1])
	assert.Equal(t, "Surface: 1024x768", lines[2])
	assert.Equal(t, "Frame: 42", lines[3])
}

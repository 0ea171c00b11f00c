package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/town-links/internal/engine/input"
)

func TestTranslateSDL(t *testing.T) {
	drawable := func() (int, int) { return 1600, 1200 }

	tests := []struct {
		name  string
		event sdl.Event
		want  input.Event
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, input.Event{Type: input.EventQuit}, true},
		{
			"resize uses drawable size",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600},
			input.Event{Type: input.EventWindowResize, Width: 1600, Height: 1200},
			true,
		},
		{
			"space down",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_SPACE}},
			input.Event{Type: input.EventKeyDown, Key: input.KeySpace},
			true,
		},
		{
			"arrow up",
			&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_UP}},
			input.Event{Type: input.EventKeyUp, Key: input.KeyUp},
			true,
		},
		{
			"repeat ignored",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_SPACE}},
			input.Event{},
			false,
		},
		{
			"mouse motion",
			&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20},
			input.Event{Type: input.EventMouseMove, MouseX: 10, MouseY: 20},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateSDL(tt.event, drawable)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKeyMappingsAgree(t *testing.T) {
	pairs := []struct {
		sdl  sdl.Keycode
		glfw glfw.Key
		want input.Key
	}{
		{sdl.K_ESCAPE, glfw.KeyEscape, input.KeyEscape},
		{sdl.K_SPACE, glfw.KeySpace, input.KeySpace},
		{sdl.K_w, glfw.KeyW, input.KeyW},
		{sdl.K_a, glfw.KeyA, input.KeyA},
		{sdl.K_s, glfw.KeyS, input.KeyS},
		{sdl.K_d, glfw.KeyD, input.KeyD},
		{sdl.K_DOWN, glfw.KeyDown, input.KeyDown},
		{sdl.K_LEFT, glfw.KeyLeft, input.KeyLeft},
		{sdl.K_RIGHT, glfw.KeyRight, input.KeyRight},
		{sdl.K_q, glfw.KeyQ, input.KeyUnknown},
	}
	for _, p := range pairs {
		if got := sdlKey(p.sdl); got != p.want {
			t.Errorf("sdlKey(%v) = %v, want %v", p.sdl, got, p.want)
		}
		if got := glfwKey(p.glfw); got != p.want {
			t.Errorf("glfwKey(%v) = %v, want %v", p.glfw, got, p.want)
		}
	}
}

func TestTranslateGLFWKey(t *testing.T) {
	if ev, ok := translateGLFWKey(glfw.KeyW, glfw.Press); !ok || ev != (input.Event{Type: input.EventKeyDown, Key: input.KeyW}) {
		t.Errorf("press: got %+v, %v", ev, ok)
	}
	if ev, ok := translateGLFWKey(glfw.KeyW, glfw.Release); !ok || ev.Type != input.EventKeyUp {
		t.Errorf("release: got %+v, %v", ev, ok)
	}
	if _, ok := translateGLFWKey(glfw.KeySpace, glfw.Repeat); ok {
		t.Error("repeats should be dropped")
	}
}

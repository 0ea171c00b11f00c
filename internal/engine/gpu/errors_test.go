package gpu

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		err         error
		recoverable bool
		skippable   bool
		fatal       bool
	}{
		{ErrSurfaceLost, true, false, false},
		{fmt.Errorf("acquire: %w", ErrSurfaceLost), true, false, false},
		{ErrSurfaceTimeout, false, true, false},
		{ErrSurfaceOutdated, false, true, false},
		{ErrSurfaceOutOfMemory, false, false, true},
		{errors.New("something else"), false, false, false},
	}

	for _, tt := range tests {
		if got := IsRecoverable(tt.err); got != tt.recoverable {
			t.Errorf("IsRecoverable(%v) = %v", tt.err, got)
		}
		if got := IsSkippable(tt.err); got != tt.skippable {
			t.Errorf("IsSkippable(%v) = %v", tt.err, got)
		}
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v", tt.err, got)
		}
	}
}

func TestFormatSrgb(t *testing.T) {
	if !FormatBGRA8UnormSrgb.IsSrgb() || FormatRGBA8Unorm.IsSrgb() {
		t.Error("unexpected sRGB classification")
	}
	if FormatRGBA8UnormSrgb.String() != "rgba8unorm-srgb" {
		t.Errorf("unexpected name %q", FormatRGBA8UnormSrgb.String())
	}
}

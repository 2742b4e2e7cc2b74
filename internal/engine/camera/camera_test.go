package camera

import (
	"testing"

	"github.com/kelthar/rigview/pkg/math"
)

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 10000)
	if c.RotationX != c.MaxPitch {
		t.Errorf("pitch = %f, want clamp at %f", c.RotationX, c.MaxPitch)
	}
	c.HandleDrag(0, -100000)
	if c.RotationX != c.MinPitch {
		t.Errorf("pitch = %f, want clamp at %f", c.RotationX, c.MinPitch)
	}
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()
	for i := 0; i < 200; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("distance = %f, want clamp at %f", c.Distance, c.MinDistance)
	}
}

func TestFitToBoundsCenters(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.Vec3{X: -1, Y: 0, Z: -1}, math.Vec3{X: 1, Y: 2, Z: 1})
	if c.Center.Y != 1 || c.Center.X != 0 {
		t.Errorf("center = %v, want (0,1,0)", c.Center)
	}
	if c.Distance < c.MinDistance || c.Distance > c.MaxDistance {
		t.Errorf("distance %f outside limits", c.Distance)
	}
}

package app

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/kelthar/rigview/internal/engine/anim"
)

const sidePanelWidth = 280

// renderUI lays out the viewport panel and the control side panel over
// the full work area.
func (a *App) renderUI(textureID uint32) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	panelFlags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X-sidePanelWidth, workSize.Y))
	if imgui.BeginV("Viewport", nil, panelFlags) {
		a.renderViewport(textureID)
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-sidePanelWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(sidePanelWidth, workSize.Y))
	if imgui.BeginV("Controls", nil, panelFlags) {
		a.renderControls()
	}
	imgui.End()

	a.renderScreenshotNotice(workPos, workSize)
}

// renderViewport shows the rendered scene as an image widget and feeds
// mouse input back to the orbit camera.
func (a *App) renderViewport(textureID uint32) {
	switch a.phase {
	case phaseIdle:
		imgui.TextDisabled("Waiting for a model file...")
		return
	case phaseLoading:
		dots := int(time.Now().UnixMilli()/300) % 4
		imgui.Text("Loading model" + "...."[:dots+1])
		return
	case phaseFailed:
		imgui.Text(fmt.Sprintf("Failed to load model: %v", a.loadErr))
		return
	}

	avail := imgui.ContentRegionAvail()
	side := avail.X
	if avail.Y < side {
		side = avail.Y
	}
	if side < 1 {
		return
	}
	startX := imgui.CursorPosX()
	if side < avail.X {
		imgui.SetCursorPosX(startX + (avail.X-side)/2)
	}

	// Flip V so the GL framebuffer shows right side up.
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(side, side),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.878, 0.878, 0.878, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			deltaX := mousePos.X - a.lastMousePos.X
			deltaY := mousePos.Y - a.lastMousePos.Y
			a.viewer.HandleMouseDrag(deltaX, deltaY)
		}
		a.lastMousePos = mousePos

		wheel := imgui.CurrentIO().MouseWheel()
		if wheel != 0 {
			a.viewer.HandleMouseWheel(wheel)
		}
	}
}

// renderControls draws the state selector, emote buttons and playback
// settings.
func (a *App) renderControls() {
	if a.phase != phaseReady {
		imgui.TextDisabled("No model loaded")
		return
	}

	imgui.Text("State")
	if imgui.BeginCombo("##state", a.controller.State()) {
		for _, name := range anim.States {
			selected := name == a.controller.State()
			if imgui.SelectableBoolV(name, selected, 0, imgui.NewVec2(0, 0)) && !selected {
				a.controller.Transition(name, a.cfg.Model.Fade)
			}
		}
		imgui.EndCombo()
	}

	imgui.Separator()
	imgui.Text("Emotes")
	for i, name := range anim.Emotes {
		if i%2 == 1 {
			imgui.SameLine()
		}
		if imgui.ButtonV(name, imgui.NewVec2(120, 0)) {
			a.controller.PlayEmote(name)
		}
	}

	imgui.Separator()
	imgui.Text("Playback")
	imgui.SliderFloatV("Speed", &a.speed, 0.0, 2.0, "%.2fx", 0)
	imgui.Checkbox("Pause", &a.paused)

	imgui.Separator()
	imgui.Text("Camera")
	if imgui.Button("Reset View") {
		a.viewer.ResetView()
	}
	fog := a.viewer.FogEnabled
	if imgui.Checkbox("Fog", &fog) {
		a.viewer.FogEnabled = fog
	}

	imgui.Separator()
	imgui.TextDisabled("F12: screenshot")
	imgui.TextDisabled("Drag: orbit, wheel: zoom")
}

// renderScreenshotNotice shows a short-lived overlay after a capture.
func (a *App) renderScreenshotNotice(workPos, workSize imgui.Vec2) {
	if a.screenshotMsg == "" || time.Since(a.screenshotMsgTime) > 2*time.Second {
		return
	}
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+10, workPos.Y+workSize.Y-40))
	imgui.SetNextWindowBgAlpha(0.85)
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse |
		imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsAlwaysAutoResize
	if imgui.BeginV("##screenshot-notice", nil, flags) {
		imgui.Text(a.screenshotMsg)
	}
	imgui.End()
}

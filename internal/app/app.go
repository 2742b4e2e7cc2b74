// Package app is the rigview application shell: window, frame loop,
// model loading, and the control panels around the 3D viewport.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sqweek/dialog"

	"github.com/kelthar/rigview/internal/config"
	"github.com/kelthar/rigview/internal/engine/anim"
	"github.com/kelthar/rigview/internal/engine/model"
	"github.com/kelthar/rigview/internal/fetch"
	"github.com/kelthar/rigview/internal/logger"
	"github.com/kelthar/rigview/internal/viewer"
	"github.com/kelthar/rigview/pkg/formats"
)

// loadPhase tracks where the model is in its load lifecycle.
type loadPhase int

const (
	phaseIdle loadPhase = iota
	phaseLoading
	phaseReady
	phaseFailed
)

// viewportSize is the offscreen framebuffer resolution.
const viewportSize = 1024

// App owns the UI backend and all per-session state.
type App struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	cfg     *config.Config

	phase   loadPhase
	loadErr error
	loadCh  <-chan fetch.Result

	// Source picked from the native file dialog; consumed on the main
	// thread.
	pendingSource string
	dialogOpen    bool

	viewer     *viewer.Viewer
	model      *model.Model
	mixer      *anim.Mixer
	controller *anim.Controller
	clock      *anim.Clock

	speed  float32
	paused bool

	screenshotDir       string
	screenshotRequested bool
	screenshotMsg       string
	screenshotMsgTime   time.Time

	lastMousePos imgui.Vec2
}

// New creates the application window and UI backend.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:           cfg,
		clock:         anim.NewClock(),
		speed:         1.0,
		screenshotDir: "/tmp/rigview",
	}

	if err := os.MkdirAll(a.screenshotDir, 0755); err != nil {
		logger.Sugar.Warnf("could not create screenshot dir: %v", err)
	}

	be, err := backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("creating UI backend: %w", err)
	}
	a.backend = be

	a.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	a.backend.CreateWindow("rigview", cfg.Graphics.Width, cfg.Graphics.Height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	return a, nil
}

// Run starts the main loop and blocks until the window closes.
func (a *App) Run() {
	a.backend.Run(a.frame)
}

// Close releases GL resources.
func (a *App) Close() {
	if a.viewer != nil {
		a.viewer.Destroy()
		a.viewer = nil
	}
}

// frame is the per-tick callback: advance loading, step the mixer, render
// the viewport, then draw the UI.
func (a *App) frame() {
	a.advanceLoad()

	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyF12)) {
		a.screenshotRequested = true
	}

	dt := a.clock.Delta()

	var textureID uint32
	if a.phase == phaseReady {
		a.mixer.TimeScale = a.speed
		a.mixer.Paused = a.paused
		a.mixer.Update(dt)

		a.viewer.SetPose(a.mixer.SkinningMatrices())
		textureID = a.viewer.Render()

		if a.screenshotRequested {
			a.screenshotRequested = false
			a.captureScreenshot()
		}
	}

	a.renderUI(textureID)
}

// advanceLoad drives the load state machine: pick a source, fetch it off
// the main thread, then parse and upload here where the GL context lives.
func (a *App) advanceLoad() {
	switch a.phase {
	case phaseIdle:
		source := a.cfg.Model.Source
		if source == "" {
			if a.pendingSource != "" {
				source = a.pendingSource
				a.pendingSource = ""
			} else {
				a.openFileDialog()
				return
			}
		}
		logger.Sugar.Infof("loading model from %s", source)
		a.loadCh = fetch.Go(source)
		a.phase = phaseLoading

	case phaseLoading:
		select {
		case res := <-a.loadCh:
			a.loadCh = nil
			if res.Err != nil {
				a.fail(res.Err)
				return
			}
			a.finishLoad(res.Data)
		default:
		}
	}
}

// finishLoad parses the fetched GLB and brings up the viewer, mixer and
// controller.
func (a *App) finishLoad(data []byte) {
	doc, err := formats.ParseGLB(data)
	if err != nil {
		a.fail(fmt.Errorf("parsing model: %w", err))
		return
	}

	m, err := model.Build(doc)
	if err != nil {
		a.fail(fmt.Errorf("building model: %w", err))
		return
	}

	if a.viewer == nil {
		v, err := viewer.New(viewportSize, viewportSize)
		if err != nil {
			a.fail(fmt.Errorf("creating viewer: %w", err))
			return
		}
		a.viewer = v
		a.applyCameraConfig()
	}
	if err := a.viewer.LoadModel(m); err != nil {
		a.fail(fmt.Errorf("uploading model: %w", err))
		return
	}

	a.model = m
	a.mixer = anim.NewMixer(m.Skeleton)
	a.controller = anim.NewController(a.mixer, m.Clips, a.cfg.Model.InitialState)
	a.phase = phaseReady

	logger.Sugar.Infof("model ready: %d clips, initial state %q",
		len(m.Clips), a.cfg.Model.InitialState)
}

func (a *App) applyCameraConfig() {
	cam := a.viewer.Camera
	cam.Distance = a.cfg.Camera.Distance
	cam.MinDistance = a.cfg.Camera.MinDistance
	cam.MaxDistance = a.cfg.Camera.MaxDistance
	cam.DragSensitivity = a.cfg.Camera.DragSensitivity
	cam.ZoomSensitivity = a.cfg.Camera.ZoomSensitivity
}

func (a *App) fail(err error) {
	a.loadErr = err
	a.phase = phaseFailed
	logger.Sugar.Errorf("model load failed: %v", err)
}

// openFileDialog asks for a .glb when no source is configured. The
// dialog runs off the main thread; the result is consumed in advanceLoad.
func (a *App) openFileDialog() {
	if a.dialogOpen {
		return
	}
	a.dialogOpen = true
	go func() {
		filename, err := dialog.File().
			Filter("glTF Binary", "glb").
			Filter("All Files", "*").
			Title("Open Model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Sugar.Errorf("file dialog: %v", err)
			}
			a.dialogOpen = false
			return
		}
		a.pendingSource = filename
		a.dialogOpen = false
	}()
}

// captureScreenshot saves the viewport framebuffer as a timestamped PNG.
func (a *App) captureScreenshot() {
	name := fmt.Sprintf("%s/rigview-%s.png", a.screenshotDir, time.Now().Format("20060102-150405"))
	if err := a.viewer.Screenshot(name); err != nil {
		a.screenshotMsg = fmt.Sprintf("Screenshot failed: %v", err)
	} else {
		a.screenshotMsg = "Saved " + name
	}
	a.screenshotMsgTime = time.Now()
}

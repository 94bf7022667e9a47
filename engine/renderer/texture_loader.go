package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
)

type textureLoader struct {
	mu *sync.Mutex

	renderer Renderer
	taskID   int
	accepted map[resource.Texture]bool
}

// TextureLoader makes textures available to a renderer. Decoding runs on a worker pool that lives
// for one Load; handing the pixels to the renderer always happens on the calling goroutine.
type TextureLoader interface {
	// Load decodes every texture reachable from root that is not decoded yet, waits for all of them,
	// then hands each one to the renderer.
	//
	// Parameters:
	//   - root: the scene to search; nil is a no-op
	//
	// Returns:
	//   - error: the joined errors of every texture that failed, or nil
	Load(root scene.Node) error

	// LoadTexture decodes one texture and hands it to the renderer.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - error: a decode or upload error
	LoadTexture(t resource.Texture) error

	// Loaded reports whether t is decoded and accepted by the renderer.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - bool: true once the renderer owns the texture
	Loaded(t resource.Texture) bool

	// Renderer returns the renderer textures are loaded into.
	//
	// Returns:
	//   - Renderer: the renderer
	Renderer() Renderer
}

var _ TextureLoader = &textureLoader{}

// NewTextureLoader creates a TextureLoader for r.
//
// Parameters:
//   - r: the renderer receiving the textures
//
// Returns:
//   - TextureLoader: the loader
func NewTextureLoader(r Renderer) TextureLoader {
	return &textureLoader{
		mu:       &sync.Mutex{},
		renderer: r,
		accepted: make(map[resource.Texture]bool),
	}
}

func (l *textureLoader) Load(root scene.Node) error {
	textures := scene.Textures(root)
	if len(textures) == 0 {
		return nil
	}

	var pending []int
	for i, t := range textures {
		if !t.Loaded() {
			pending = append(pending, i)
		}
	}

	decodeErrs := make([]error, len(textures))
	if len(pending) > 0 {
		pool := worker.NewDynamicWorkerPool(min(runtime.NumCPU(), len(pending)), len(pending), 1*time.Second)
		l.decode(pool, textures, pending, decodeErrs)
		pool.Stop()
	}

	var errs []error
	for i, t := range textures {
		if decodeErrs[i] != nil {
			errs = append(errs, decodeErrs[i])
			continue
		}
		if err := l.LoadTexture(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// decode runs Load for textures[i] of every pending index on pool and waits for all of them.
func (l *textureLoader) decode(pool worker.DynamicWorkerPool, textures []resource.Texture, pending []int, decodeErrs []error) {
	var wg sync.WaitGroup
	for _, i := range pending {
		wg.Add(1)
		idx, tex := i, textures[i]
		pool.SubmitTask(worker.Task{
			ID: l.nextTaskID(),
			Do: func() (any, error) {
				defer wg.Done()
				if err := tex.Load(); err != nil {
					decodeErrs[idx] = fmt.Errorf("load texture %s: %w", tex.Name(), err)
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (l *textureLoader) nextTaskID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.taskID++
	return l.taskID
}

func (l *textureLoader) LoadTexture(t resource.Texture) error {
	if t == nil {
		return nil
	}
	if err := l.renderer.LoadTexture(t); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accepted[t] = true
	return nil
}

func (l *textureLoader) Loaded(t resource.Texture) bool {
	if t == nil || !t.Loaded() {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accepted[t]
}

func (l *textureLoader) Renderer() Renderer {
	return l.renderer
}

// textureLoadOnInit loads the renderer's scene textures when the renderer initializes.
type textureLoadOnInit struct {
	loader TextureLoader
}

// NewTextureLoadOnInit creates a rendering Initialize listener that runs loader.Load on the scene
// bound to the renderer at that moment. Failures are logged through the renderer's logger.
//
// Parameters:
//   - loader: the texture loader
//
// Returns:
//   - event.Listener[RenderingEventArg]: the listener
func NewTextureLoadOnInit(loader TextureLoader) event.Listener[RenderingEventArg] {
	return &textureLoadOnInit{loader: loader}
}

func (t *textureLoadOnInit) Handle(arg RenderingEventArg) {
	if err := t.loader.Load(arg.Renderer.SceneRoot()); err != nil {
		arg.Renderer.Logger().Error("texture preload failed", "error", err)
	}
}

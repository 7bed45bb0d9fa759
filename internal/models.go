package internal

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iksnae/llm-studio/internal/clock"
)

const (
	// DefaultTickInterval is the simulated download cadence
	DefaultTickInterval = 300 * time.Millisecond
	// DefaultProgressStep is how many percentage points one tick adds
	DefaultProgressStep = 10
)

type installTask struct {
	timer clock.Timer
}

// ModelManager simulates model downloads and tracks the default model
type ModelManager struct {
	store    *Store
	clock    clock.Clock
	interval time.Duration
	step     int

	mu    sync.Mutex
	tasks map[string]*installTask
}

// NewModelManager creates a ModelManager. Non-positive interval or step
// fall back to the defaults.
func NewModelManager(store *Store, clk clock.Clock, interval time.Duration, step int) *ModelManager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if step <= 0 {
		step = DefaultProgressStep
	}
	return &ModelManager{
		store:    store,
		clock:    clk,
		interval: interval,
		step:     step,
		tasks:    make(map[string]*installTask),
	}
}

// Models returns the catalog
func (m *ModelManager) Models() []Model {
	return m.store.State().Models
}

// Model resolves a model by id
func (m *ModelManager) Model(id string) (Model, bool) {
	return m.store.State().Model(id)
}

// InstalledModels lists installed models in catalog order
func (m *ModelManager) InstalledModels() []Model {
	return m.store.State().InstalledModels()
}

// CurrentModel resolves the default model. It reports false in the
// "no default" state or when the id no longer resolves.
func (m *ModelManager) CurrentModel() (Model, bool) {
	return m.store.State().CurrentModelData()
}

// Installing reports whether a download task is running for id
func (m *ModelManager) Installing(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tasks[id]
	return ok
}

// InstallModel starts a simulated download. Calling it again while the
// download runs, or for an installed model, does nothing.
func (m *ModelManager) InstallModel(id string) error {
	var err error
	m.store.update(func(s State) (State, Change) {
		model, ok := s.Model(id)
		if !ok {
			err = modelNotFound(id)
			return s, 0
		}
		if model.Installed {
			LogDebug("Model %s is already installed", id)
			return s, 0
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if _, running := m.tasks[id]; running {
			LogDebug("Install of %s already in progress", id)
			return s, 0
		}
		task := &installTask{}
		m.tasks[id] = task
		task.timer = m.clock.AfterFunc(m.interval, func() { m.tick(id, task) })
		LogInfo("Started install of %s", id)
		return s, 0
	})
	if err != nil {
		LogWarn("Cannot install model: %v", err)
	}
	return err
}

// tick advances one download step. It runs under the store lock so it
// cannot interleave with an uninstall of the same model.
func (m *ModelManager) tick(id string, task *installTask) {
	m.store.update(func(s State) (State, Change) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.tasks[id] != task {
			return s, 0
		}
		i := indexOfModel(s.Models, id)
		if i < 0 {
			delete(m.tasks, id)
			return s, 0
		}

		model := s.Models[i]
		progress := model.DownloadProgress + m.step
		if progress >= 100 {
			model.Installed = true
			model.DownloadProgress = 0
			delete(m.tasks, id)
			LogInfo("Installed %s", id)
		} else {
			model.DownloadProgress = progress
			task.timer = m.clock.AfterFunc(m.interval, func() { m.tick(id, task) })
		}
		s.Models = withModel(s.Models, i, model)
		return s, ChangeModels
	})
}

// UninstallModel cancels any running download and marks the model not
// installed. When it was the default, the first other installed model
// becomes the default, or there is no default if none is left.
func (m *ModelManager) UninstallModel(id string) error {
	var err error
	m.store.update(func(s State) (State, Change) {
		i := indexOfModel(s.Models, id)
		if i < 0 {
			err = modelNotFound(id)
			return s, 0
		}
		m.cancel(id)

		change := Change(0)
		model := s.Models[i]
		if model.Installed || model.DownloadProgress != 0 {
			model.Installed = false
			model.DownloadProgress = 0
			s.Models = withModel(s.Models, i, model)
			change |= ChangeModels
		}
		if s.CurrentModel == id {
			s.CurrentModel = fallbackDefault(s.Models, id)
			change |= ChangeCurrentModel
			LogInfo("Default model %s uninstalled, default is now %q", id, s.CurrentModel)
		}
		return s, change
	})
	if err != nil {
		LogWarn("Cannot uninstall model: %v", err)
	}
	return err
}

// ClearUnusedModels uninstalls every installed model except the default
// and returns the ids removed.
func (m *ModelManager) ClearUnusedModels() []string {
	var removed []string
	m.store.update(func(s State) (State, Change) {
		models := s.Models
		for i, model := range s.Models {
			if !model.Installed || model.ID == s.CurrentModel {
				continue
			}
			model.Installed = false
			model.DownloadProgress = 0
			models = withModel(models, i, model)
			removed = append(removed, model.ID)
		}
		if len(removed) == 0 {
			return s, 0
		}
		s.Models = models
		return s, ChangeModels
	})
	if len(removed) > 0 {
		LogInfo("Cleared %d unused model(s)", len(removed))
	}
	return removed
}

// SetDefaultModel selects the default model. Unknown ids are rejected and
// the state is left unchanged.
func (m *ModelManager) SetDefaultModel(id string) error {
	found := false
	m.store.update(func(s State) (State, Change) {
		if indexOfModel(s.Models, id) < 0 {
			return s, 0
		}
		found = true
		if s.CurrentModel == id {
			return s, 0
		}
		s.CurrentModel = id
		return s, ChangeCurrentModel
	})
	if !found {
		LogWarn("Rejected default model %q: not in catalog", id)
		return modelNotFound(id)
	}
	return nil
}

// StorageUsage sums the download sizes of installed models. Sizes that
// cannot be parsed are skipped.
func (m *ModelManager) StorageUsage() (uint64, string) {
	var total uint64
	for _, model := range m.InstalledModels() {
		n, err := humanize.ParseBytes(model.DownloadSize)
		if err != nil {
			LogDebug("Skipping size %q of %s: %v", model.DownloadSize, model.ID, err)
			continue
		}
		total += n
	}
	return total, humanize.Bytes(total)
}

// Shutdown cancels every running download
func (m *ModelManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, task := range m.tasks {
		if task.timer != nil {
			task.timer.Stop()
		}
		delete(m.tasks, id)
	}
}

// cancel stops the task for id, if any. Caller holds the store lock.
func (m *ModelManager) cancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return
	}
	if task.timer != nil {
		task.timer.Stop()
	}
	delete(m.tasks, id)
	LogDebug("Cancelled install of %s", id)
}

func fallbackDefault(models []Model, exclude string) string {
	for _, model := range models {
		if model.Installed && model.ID != exclude {
			return model.ID
		}
	}
	return ""
}

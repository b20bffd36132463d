package sound

import (
	"sync"

	"go.uber.org/zap"
)

type Sound struct {
	ID          uint32
	Source      string
	Volume      float64
	Muted       bool
	PlayOnStart bool
}

// Backend starts playback and returns at once. A started sound plays to the
// end; there is no way to stop it.
type Backend interface {
	Play(source string, volume float64) error
}

type Manager struct {
	mu      sync.Mutex
	sounds  []Sound
	nextID  uint32
	backend Backend
	logger  *zap.Logger
}

func NewManager(backend Backend, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{backend: backend, logger: logger}
}

// Add keeps the sound and plays it if PlayOnStart is set. A zero ID is
// replaced by the next free one.
func (m *Manager) Add(s Sound) (Sound, error) {
	m.mu.Lock()
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	} else if s.ID > m.nextID {
		m.nextID = s.ID
	}
	m.sounds = append(m.sounds, s)
	m.mu.Unlock()

	m.logger.Info("sound added", zap.String("source", s.Source), zap.Uint32("id", s.ID))
	if s.PlayOnStart {
		if err := m.Play(s); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Remove forgets the sound. A sound already playing is not stopped.
func (m *Manager) Remove(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sounds {
		if s.ID == id {
			m.sounds = append(m.sounds[:i], m.sounds[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) Get(id uint32) (Sound, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sounds {
		if s.ID == id {
			return s, true
		}
	}
	return Sound{}, false
}

func (m *Manager) Sounds() []Sound {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sound(nil), m.sounds...)
}

// Play checks the mute flag once, before playback starts. Muting afterwards
// does not silence a sound that is already playing.
func (m *Manager) Play(s Sound) error {
	if s.Muted {
		m.logger.Info("muted sound won't be played till unmuted", zap.String("source", s.Source))
		return nil
	}
	volume := s.Volume
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	if err := m.backend.Play(s.Source, volume); err != nil {
		return err
	}
	m.logger.Info("playing sound", zap.String("source", s.Source), zap.Float64("volume", volume))
	return nil
}

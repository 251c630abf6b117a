package persistance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/exp/slices"
)

const (
	DEFAULT_STATE_DIR = "~/.config/prtrack"
	maxTracked        = 50
)

type TrackedInfo struct {
	Repository  string    `json:"repository"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	LastTracked time.Time `json:"lastTracked"`
}

type state struct {
	Tracked []*TrackedInfo `json:"tracked,omitempty"`
}

type PersistanceRepo interface {
	AddTracked(repo string, number int, title string) error
	GetTracked() ([]*TrackedInfo, error)
}

// XDGPersistanceRepo keeps the tracking history in a JSON file under the
// user's configuration directory.
type XDGPersistanceRepo struct {
	mu  sync.Mutex
	dir string
	s   *state
	now func() time.Time
}

func NewXDGPersistanceRepo(dir string) *XDGPersistanceRepo {
	return &XDGPersistanceRepo{
		dir: dir,
		s:   &state{},
		now: time.Now,
	}
}

func (repo *XDGPersistanceRepo) stateDir() (string, error) {
	return homedir.Expand(repo.dir)
}

func (repo *XDGPersistanceRepo) createStateDirIfNotExist() (string, error) {
	dirPath, err := repo.stateDir()
	if err != nil {
		return "", err
	}

	_, err = os.Stat(dirPath)
	if os.IsNotExist(err) {
		err = os.MkdirAll(dirPath, 0700)
	}

	return dirPath, err
}

func (repo *XDGPersistanceRepo) load() error {
	dirPath, err := repo.createStateDirIfNotExist()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(dirPath, "state"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	s := &state{}
	err = json.Unmarshal(data, s)
	if err != nil {
		return fmt.Errorf("cannot load state file: %v", err)
	}
	repo.s = s

	return nil
}

func (repo *XDGPersistanceRepo) save() error {
	dirPath, err := repo.createStateDirIfNotExist()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(repo.s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dirPath, "state"), data, 0644)
}

// GetTracked returns the tracking history, most recent first.
func (repo *XDGPersistanceRepo) GetTracked() ([]*TrackedInfo, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	err := repo.load()
	if err != nil {
		return nil, err
	}

	return repo.s.Tracked, nil
}

func (repo *XDGPersistanceRepo) AddTracked(name string, number int, title string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	err := repo.load()
	if err != nil {
		return err
	}

	index := slices.IndexFunc(
		repo.s.Tracked,
		func(v *TrackedInfo) bool {
			return v.Repository == name && v.Number == number
		},
	)
	if index != -1 {
		repo.s.Tracked = slices.Delete(repo.s.Tracked, index, index+1)
	}

	repo.s.Tracked = slices.Insert(repo.s.Tracked, 0, &TrackedInfo{
		Repository:  name,
		Number:      number,
		Title:       title,
		LastTracked: repo.now(),
	})
	if len(repo.s.Tracked) > maxTracked {
		repo.s.Tracked = repo.s.Tracked[:maxTracked]
	}

	return repo.save()
}

var persistanceRepo PersistanceRepo = NewXDGPersistanceRepo(DEFAULT_STATE_DIR)

func GetDefault() PersistanceRepo {
	return persistanceRepo
}

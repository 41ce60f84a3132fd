package cart

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store is the persistence port for a client-held cart. Every mutation made
// through a Session is mirrored to the store, matching the
// save-on-every-change behavior of the browser-local cart.
type Store interface {
	Load() (Cart, error)
	Save(Cart) error
}

type MemoryStore struct {
	mu   sync.Mutex
	cart Cart
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Empty(), nil
	}
	return s.cart, nil
}

func (s *MemoryStore) Save(c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = c
	s.set = true
	return nil
}

// FileStore persists the cart as a JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Cart, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return Empty(), err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Empty(), err
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

func (s *FileStore) Save(c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Session binds a cart value to its store and applies the pure transitions,
// persisting after every change.
type Session struct {
	store Store
	cart  Cart
	now   func() time.Time
}

func NewSession(store Store) (*Session, error) {
	loaded, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, cart: loaded, now: time.Now}, nil
}

func (s *Session) Cart() Cart {
	return s.cart
}

func (s *Session) apply(next Cart) error {
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.cart = next
	return nil
}

func (s *Session) Add(item Item) error {
	return s.apply(Add(s.cart, item, s.now()))
}

func (s *Session) Remove(id string) error {
	return s.apply(Remove(s.cart, id))
}

func (s *Session) SetQuantity(id string, quantity int) error {
	return s.apply(SetQuantity(s.cart, id, quantity))
}

func (s *Session) SetNotes(id string, notes string) error {
	return s.apply(SetNotes(s.cart, id, notes))
}

func (s *Session) SetSpiceLevel(id string, level SpiceLevel) error {
	return s.apply(SetSpiceLevel(s.cart, id, level))
}

func (s *Session) Clear() error {
	return s.apply(Empty())
}

func (s *Session) MarkOrdered() error {
	return s.apply(MarkOrdered(s.cart))
}

func (s *Session) HasUnordered() bool {
	return HasUnordered(s.cart)
}

package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

var (
	// ErrTaskNotFound is returned when a task id has no record.
	ErrTaskNotFound = errors.New("store: task not found")
	// ErrUserNotFound is returned when no user has the requested email.
	ErrUserNotFound = errors.New("store: user not found")
	// ErrEmailTaken is returned when registering an email twice.
	ErrEmailTaken = errors.New("store: email already registered")
)

const (
	tasksBucket  = "tasks"
	usersBucket  = "users"
	emailsBucket = "emails"
)

// Tasks persists task records.
type Tasks interface {
	CreateTask(fields TaskFields) (*Record, error)
	ListTasks(ctx context.Context) ([]*Record, error)
	GetTask(ctx context.Context, id string) (*Record, error)
	SaveTask(r *Record) error
	DeleteTask(id string) error
}

// Users persists accounts.
type Users interface {
	CreateUser(name, email, hashedPassword string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	SaveUser(u *User) error
}

// Persistence defines the persistence contract for users and tasks.
type Persistence interface {
	Tasks
	Users
	Watch(ctx context.Context) (<-chan Event, error)
}

// Option customises a Persistence.
type Option func(*persistence)

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *persistence) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides record id assignment.
func WithIDGenerator(fn func() string) Option {
	return func(p *persistence) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		settings, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = settings
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path required")
	}
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	now      func() time.Time
	newID    func() string

	// users serialises the email index with user records.
	users sync.Mutex
}

func (p *persistence) CreateTask(fields TaskFields) (*Record, error) {
	r, err := newRecord(p.newID(), fields, p.now())
	if err != nil {
		return nil, err
	}
	if err := p.SaveTask(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *persistence) ListTasks(ctx context.Context) ([]*Record, error) {
	all := make([]*Record, 0)
	for key := range p.d.KeysPrefix(tasksBucket+"/", ctx.Done()) {
		r, err := p.readTask(key)
		if err != nil {
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		all = append(all, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortRecords(all)
	return all, nil
}

func (p *persistence) GetTask(_ context.Context, id string) (*Record, error) {
	key := toKey(tasksBucket, id)
	if !p.d.Has(key) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return p.readTask(key)
}

func (p *persistence) readTask(key string) (*Record, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	r := &Record{}
	if err := json.Unmarshal(val, r); err != nil {
		return nil, err
	}
	if r.ID == "" {
		r.ID = keyToPathTransform(key).FileName
	}
	return r, nil
}

func (p *persistence) SaveTask(r *Record) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return errors.New("store: task id required")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.d.Write(toKey(tasksBucket, r.ID), data)
}

func (p *persistence) DeleteTask(id string) error {
	key := toKey(tasksBucket, id)
	if !p.d.Has(key) {
		return nil
	}
	return p.d.Erase(key)
}

func (p *persistence) CreateUser(name, email, hashedPassword string) (*User, error) {
	u, err := newUser(p.newID(), name, email, hashedPassword, p.now())
	if err != nil {
		return nil, err
	}

	p.users.Lock()
	defer p.users.Unlock()
	idx := toKey(emailsBucket, emailKey(u.Email))
	if p.d.Has(idx) {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
	}
	if err := p.writeUser(u); err != nil {
		return nil, err
	}
	if err := p.d.WriteString(idx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *persistence) FindUserByEmail(_ context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	p.users.Lock()
	defer p.users.Unlock()
	idx := toKey(emailsBucket, emailKey(email))
	if !p.d.Has(idx) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	id := p.d.ReadString(idx)
	val, err := p.d.Read(toKey(usersBucket, id))
	if err != nil {
		return nil, fmt.Errorf("store: read user %s: %w", id, err)
	}
	u := &User{}
	if err := json.Unmarshal(val, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *persistence) SaveUser(u *User) error {
	if u == nil || u.ID == "" {
		return errors.New("store: user id required")
	}
	p.users.Lock()
	defer p.users.Unlock()
	return p.writeUser(u)
}

func (p *persistence) writeUser(u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return p.d.Write(toKey(usersBucket, u.ID), data)
}

func sortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		lt := records[i].CreatedAt.Time
		rt := records[j].CreatedAt.Time
		if lt.Equal(rt) {
			return records[i].ID < records[j].ID
		}
		return lt.Before(rt)
	})
}

// keyToPathTransform maps `bucket/name` to the bucket directory.
func keyToPathTransform(s string) *diskv.PathKey {
	bucket, name, ok := strings.Cut(s, "/")
	if !ok {
		return &diskv.PathKey{FileName: s}
	}
	return &diskv.PathKey{
		Path:     []string{bucket},
		FileName: name,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

func toKey(bucket, name string) string {
	return fmt.Sprintf("%s/%s", bucket, name)
}

func emailKey(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

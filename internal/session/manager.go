package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"ruleforty/internal/company"
)

// Options 为 Manager 的配置。
type Options struct {
	MaxSessions   int
	IdleTTL       time.Duration
	Seed          []company.Record
	DefaultHeight int
	// OnEvict 在会话因空闲或容量不足被淘汰后调用。
	OnEvict func(id string)
}

// Manager 按会话 id 保存 State。空闲会话会过期，
// 表满时淘汰最久未使用的会话。
type Manager struct {
	cache  *expirable.LRU[string, *State]
	seed   []company.Record
	height int
}

func NewManager(opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = time.Hour
	}
	var onEvict expirable.EvictCallback[string, *State]
	if opts.OnEvict != nil {
		cb := opts.OnEvict
		onEvict = func(key string, _ *State) { cb(key) }
	}
	return &Manager{
		cache:  expirable.NewLRU[string, *State](opts.MaxSessions, onEvict, opts.IdleTTL),
		seed:   company.Clone(opts.Seed),
		height: opts.DefaultHeight,
	}
}

// Get 返回 id 对应的状态并刷新空闲计时。
func (m *Manager) Get(id string) (*State, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	st, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	m.cache.Add(id, st)
	return st, true
}

// Create 新建会话，并用初始数据填充。
func (m *Manager) Create() (string, *State) {
	id := uuid.NewString()
	st := NewState(m.seed, m.height)
	m.cache.Add(id, st)
	return id, st
}

// Resolve 返回 id 对应的状态，id 未知或已过期时新建会话。
// 调用方应保存返回的 id。
func (m *Manager) Resolve(id string) (string, *State, bool) {
	if st, ok := m.Get(id); ok {
		return strings.TrimSpace(id), st, false
	}
	newID, st := m.Create()
	return newID, st, true
}

// Len 返回存活的会话数。
func (m *Manager) Len() int {
	return m.cache.Len()
}

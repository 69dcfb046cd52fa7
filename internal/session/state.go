// Package session 保存每个浏览器会话的仪表盘状态。
package session

import (
	"errors"
	"sync"

	"ruleforty/internal/company"
)

// ErrNoClick 表示点击计数为 0 的事件，例如页面首次加载。
var ErrNoClick = errors.New("session: event has no click")

// SubmitEvent 为一次点击添加按钮及当时的输入内容。
type SubmitEvent struct {
	Draft  company.Draft
	Clicks int
}

// State 为单个会话的可变状态。所有方法都持有互斥锁执行，
// 一个事件处理完之后才会处理下一个。
type State struct {
	mu      sync.Mutex
	records []company.Record
	chapter int
	height  int
}

// NewState 复制 seed 生成新的状态。
func NewState(seed []company.Record, height int) *State {
	return &State{
		records: company.Clone(seed),
		height:  height,
	}
}

// Append 在记录有效且点击计数为正时追加记录，
// 返回事件处理后的记录列表以及是否被接受。
func (s *State) Append(ev SubmitEvent) ([]company.Record, bool) {
	recs, err := s.Submit(ev)
	return recs, err == nil
}

// Submit 与 Append 相同，但返回拒绝原因。
func (s *State) Submit(ev SubmitEvent) ([]company.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Clicks <= 0 {
		return company.Clone(s.records), ErrNoClick
	}
	rec, err := ev.Draft.Build()
	if err != nil {
		return company.Clone(s.records), err
	}
	s.records = append(s.records, rec)
	return company.Clone(s.records), nil
}

// Records 返回记录列表的副本。
func (s *State) Records() []company.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return company.Clone(s.records)
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *State) Chapter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapter
}

// MoveChapter 将章节索引替换为 next(current) 并返回新索引。
func (s *State) MoveChapter(next func(int) int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapter = next(s.chapter)
	return s.chapter
}

func (s *State) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

func (s *State) SetHeight(px int) {
	s.mu.Lock()
	s.height = px
	s.mu.Unlock()
}

// Package inmemdb keeps the data in process memory. It backs the `memory` database engine and the tests.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/grade"
	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/lesson"
	"github.com/trezcool/shkola/core/user"
)

type (
	DB struct {
		mutex sync.RWMutex
		tables

		txMutex sync.Mutex // one transaction at a time
	}

	tables struct {
		users     map[int]user.User
		lessons   map[int]lesson.Lesson
		grades    map[int]grade.Grade
		homeworks map[int]homework.Homework
		pkCount   int
	}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{tables: tables{
		users:     make(map[int]user.User),
		lessons:   make(map[int]lesson.Lesson),
		grades:    make(map[int]grade.Grade),
		homeworks: make(map[int]homework.Homework),
	}}
}

// InTx runs fn while holding the transaction lock. When fn fails, the tables are restored
// to their state before fn ran. Repositories ignore the nil executor passed to fn.
func (db *DB) InTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMutex.Lock()
	defer db.txMutex.Unlock()

	db.mutex.RLock()
	snap := db.tables.clone()
	db.mutex.RUnlock()

	if err := fn(nil); err != nil {
		db.mutex.Lock()
		db.tables = snap
		db.mutex.Unlock()
		return err
	}
	return nil
}

func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

func (db *DB) fullName(id int) string {
	return db.users[id].FullName()
}

func (t tables) clone() tables {
	c := tables{
		users:     make(map[int]user.User, len(t.users)),
		lessons:   make(map[int]lesson.Lesson, len(t.lessons)),
		grades:    make(map[int]grade.Grade, len(t.grades)),
		homeworks: make(map[int]homework.Homework, len(t.homeworks)),
		pkCount:   t.pkCount,
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.lessons {
		c.lessons[k] = v
	}
	for k, v := range t.grades {
		c.grades[k] = v
	}
	for k, v := range t.homeworks {
		c.homeworks[k] = v
	}
	return c
}

package services

import (
	"fmt"
	"sync"
)

// Locks hands out one mutex per entity so that mutations on the same order
// (or stock changes on the same meal) are serialized without a global lock.
// All state still lives in the database; the mutex only guards the
// read-check-write window of a single call.
type Locks struct {
	table sync.Map // key -> *sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{}
}

func (l *Locks) acquire(key string) func() {
	v, _ := l.table.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Order locks the critical section for a single order id.
func (l *Locks) Order(id uint) func() {
	return l.acquire(fmt.Sprintf("order:%d", id))
}

// Meal locks the stock critical section for a single meal id.
// When both locks are needed, the order lock is taken first.
func (l *Locks) Meal(id uint) func() {
	return l.acquire(fmt.Sprintf("meal:%d", id))
}

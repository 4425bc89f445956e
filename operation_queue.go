package depot

import (
	"fmt"
)

type operation struct {
	typ       operationType
	amount    int
	archetype *Archetype
}

type operationType int

const (
	opCreate operationType = iota
)

// opQueue holds structural operations requested while the storage is locked.
type opQueue struct {
	createOps []operation
}

func newOpQueue() opQueue {
	return opQueue{}
}

func (q *opQueue) enqueueOp(op operation) {
	switch op.typ {
	case opCreate:
		q.createOps = append(q.createOps, op)
	}
}

func (q *opQueue) len() int {
	return len(q.createOps)
}

func (sto *storage) processOperationQueue() error {
	if sto.opQueue.len() == 0 {
		return nil
	}
	ops := sto.opQueue.createOps
	sto.opQueue.createOps = nil

	for i, op := range ops {
		created, err := sto.NewEntities(op.amount, op.archetype)
		if err != nil {
			// Requeue the unfinished part of op and everything after it.
			op.amount -= len(created)
			sto.opQueue.createOps = append(sto.opQueue.createOps, op)
			sto.opQueue.createOps = append(sto.opQueue.createOps, ops[i+1:]...)
			return fmt.Errorf("failed to process queued entity creation: %w", err)
		}
	}
	return nil
}

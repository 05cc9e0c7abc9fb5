package core

import (
	"fmt"
	"sync"
)

var (
	identifierMu sync.Mutex
	owners       []interface{}
)

// IdentifierAquireNewID hands out the lowest free id and records owner against it.
func IdentifierAquireNewID(owner interface{}) uint32 {
	identifierMu.Lock()
	defer identifierMu.Unlock()
	for i, o := range owners {
		// Existing free spot. Take it.
		if o == nil {
			owners[i] = owner
			return uint32(i)
		}
	}
	owners = append(owners, owner)
	return uint32(len(owners) - 1)
}

// IdentifierReleaseID frees id for reuse.
func IdentifierReleaseID(id uint32) error {
	identifierMu.Lock()
	defer identifierMu.Unlock()
	if int(id) >= len(owners) {
		return fmt.Errorf("identifier_release_id: id '%d' out of range (max=%d). Nothing was done", id, len(owners))
	}
	owners[id] = nil
	return nil
}

// IdentifierOwner returns what id was acquired for, nil when free.
func IdentifierOwner(id uint32) interface{} {
	identifierMu.Lock()
	defer identifierMu.Unlock()
	if int(id) >= len(owners) {
		return nil
	}
	return owners[id]
}

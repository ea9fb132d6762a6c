// Package iocache is for caching I/O calls and tracking ranking runs.
package iocache

import (
	"sync"

	"github.com/whoknows/whoknows/internal/contract"
)

// CacheStoreManager manages the blame cache and run-tracking stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	blame        contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetBlameStore returns the blame CacheStore.
func (mgr *CacheStoreManager) GetBlameStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.blame
}

// GetRunStore returns the run-tracking RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

package storyboard

import (
	"sync"
)

var globalCache = &cache{}

type cache struct {
	images    sync.Map
	snapshots sync.Map
}

func LoadImageCache(key string) (*Image, bool) {
	if v, ok := globalCache.images.Load(key); ok {
		if i, ok := v.(*Image); ok {
			return i, true
		}
	}
	return nil, false
}

func StoreImageCache(key string, i *Image) {
	if i == nil {
		return
	}
	globalCache.images.Store(key, i)
}

func LoadSnapshotCache(key uint32) ([]byte, bool) {
	if v, ok := globalCache.snapshots.Load(key); ok {
		if b, ok := v.([]byte); ok {
			return b, true
		}
	}
	return nil, false
}

func StoreSnapshotCache(key uint32, b []byte) {
	if len(b) == 0 {
		return
	}
	globalCache.snapshots.Store(key, b)
}

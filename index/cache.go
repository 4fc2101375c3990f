// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"container/list"
	"sync"

	"github.com/nextbillion-ai/osmpbf/model"
)

// DefaultCacheCapacity is the number of decoded blocks a blockCache holds
// before evicting the least-recently-used one.
const DefaultCacheCapacity = 16

// block is a decoded PrimitiveBlock, kept as one []model.Element slice per
// PrimitiveGroup so lookups can address (group, idx) directly.
type block struct {
	groups [][]model.Element
}

type cacheEntry struct {
	offset uint64
	block  *block
}

// blockCache is an LRU keyed by blob file offset. Its mutex protects only
// the LRU bookkeeping: callers decompress and decode a miss with the lock
// released, then call insert, which re-checks for a racing concurrent
// insert before adding.
type blockCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element
}

func newBlockCache(capacity int) *blockCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	return &blockCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element),
	}
}

func (c *blockCache) get(offset uint64) (*block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[offset]
	if !ok {
		return nil, false
	}

	c.ll.MoveToFront(el)

	return el.Value.(*cacheEntry).block, true
}

// insert adds b for offset, evicting the least-recently-used entry if the
// cache is full. If offset was inserted by a racing caller while this one
// was decoding, the existing entry wins and b is discarded.
func (c *blockCache) insert(offset uint64, b *block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[offset]; ok {
		c.ll.MoveToFront(el)

		return
	}

	el := c.ll.PushFront(&cacheEntry{offset: offset, block: b})
	c.items[offset] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).offset)
		}
	}
}

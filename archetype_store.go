package depot

import (
	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
)

// archetypeStore owns the chunks of one archetype, in allocation order.
type archetypeStore struct {
	archetype *Archetype
	signature mask.Mask
	chunks    []*Chunk
	length    int
}

func (as *archetypeStore) findChunkWithSpace() *Chunk {
	for _, c := range as.chunks {
		if !c.full() {
			return c
		}
	}
	return nil
}

func (as *archetypeStore) allocateChunk(ar *arena, capacity int) (*Chunk, error) {
	n := chunkBytes(as.archetype, capacity)
	data, err := ar.carve(n)
	if err != nil {
		Config.logger.Warn("arena exhausted",
			zap.Uint32("archetype", as.archetype.ID()),
			zap.Int("requested", n),
			zap.Int("available", ar.available()),
		)
		return nil, err
	}
	c := &Chunk{
		archetype: as.archetype,
		index:     len(as.chunks),
		capacity:  capacity,
		data:      data,
	}
	as.chunks = append(as.chunks, c)
	Config.logger.Debug("chunk allocated",
		zap.Uint32("archetype", as.archetype.ID()),
		zap.Int("chunk", c.index),
		zap.Int("entities", as.length),
		zap.Int("bytes", n),
		zap.Int("arena_cursor", ar.cursor),
	)
	return c, nil
}

// chunkWithSpace returns the first chunk with a free slot, allocating a new one when
// every chunk is full.
func (as *archetypeStore) chunkWithSpace(ar *arena, capacity int) (*Chunk, error) {
	if c := as.findChunkWithSpace(); c != nil {
		return c, nil
	}
	return as.allocateChunk(ar, capacity)
}

package core

import "github.com/mindhaven/recall-go/pkg/storage"

// toStorageMemory converts a core Memory to a storage Memory.
func toStorageMemory(memory *Memory) *storage.Memory {
	return &storage.Memory{
		ID:        memory.ID,
		UserID:    memory.UserID,
		Content:   memory.Content,
		Tags:      memory.Tags,
		IsCore:    memory.IsCore,
		CreatedAt: memory.CreatedAt,
	}
}

// fromStorageMemory converts a storage Memory to a core Memory.
func fromStorageMemory(memory *storage.Memory) *Memory {
	return &Memory{
		ID:        memory.ID,
		UserID:    memory.UserID,
		Content:   memory.Content,
		Tags:      memory.Tags,
		IsCore:    memory.IsCore,
		CreatedAt: memory.CreatedAt,
	}
}

// fromStorageMemories converts a slice of storage memories to core memories.
func fromStorageMemories(memories []*storage.Memory) []*Memory {
	result := make([]*Memory, len(memories))
	for i, memory := range memories {
		result[i] = fromStorageMemory(memory)
	}
	return result
}

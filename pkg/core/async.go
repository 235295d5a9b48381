package core

import (
	"context"
	"sync"
	"time"
)

// AsyncClient provides asynchronous Recall operations.
//
// It wraps the synchronous Client and executes operations in separate
// goroutines, returning channels that receive the results when operations
// complete. The client tracks all goroutines and provides Wait() to ensure
// all operations finish.
//
// The serving layer uses this to remember significant chat statements off
// the response path; a reply is never blocked on a memory write.
//
// Example:
//
//	asyncClient, _ := core.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	resultChan := asyncClient.RememberAsync(ctx, "I started a new job today",
//	    core.WithUserID("user_001"))
//	result := <-resultChan
//	if result.Error != nil {
//	    log.Fatal(result.Error)
//	}
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new asynchronous Recall client.
//
// Parameters:
//   - cfg: Client configuration
//
// Returns:
//   - *AsyncClient: The asynchronous client instance
//   - error: Error if configuration is invalid or initialization fails
func NewAsyncClient(cfg *Config) (*AsyncClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &AsyncClient{
		Client: client,
	}, nil
}

// WrapClient wraps an existing synchronous client for asynchronous use.
//
// The async client takes ownership: its Close waits for in-flight operations
// and then closes the wrapped client.
func WrapClient(client *Client) *AsyncClient {
	return &AsyncClient{Client: client}
}

// RememberAsync appends a memory asynchronously.
//
// The operation executes in a separate goroutine and returns the result via
// a channel. Note that a Recall issued before the result arrives may not see
// the new memory.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - content: The statement to remember
//   - opts: Options (WithUserID required)
//
// Returns:
//   - <-chan *MemoryResult: Channel that receives the stored memory and error
func (ac *AsyncClient) RememberAsync(ctx context.Context, content string, opts ...RememberOption) <-chan *MemoryResult {
	resultChan := make(chan *MemoryResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		memory, err := ac.Remember(ctx, content, opts...)
		resultChan <- &MemoryResult{
			Memory: memory,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// RecallAsync retrieves the rendered context block asynchronously.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - query: The current user message
//   - opts: Options (WithUserIDForRecall required)
//
// Returns:
//   - <-chan *RecallResult: Channel that receives the rendered block and error
func (ac *AsyncClient) RecallAsync(ctx context.Context, query string, opts ...RecallOption) <-chan *RecallResult {
	resultChan := make(chan *RecallResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		block, err := ac.Recall(ctx, query, opts...)
		resultChan <- &RecallResult{
			Context: block,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// ForgetAsync deletes a memory asynchronously.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - id: Memory ID
//   - opts: Options (WithUserIDForForget optional)
//
// Returns:
//   - <-chan error: Channel that receives the error (nil on success)
func (ac *AsyncClient) ForgetAsync(ctx context.Context, id int64, opts ...ForgetOption) <-chan error {
	errChan := make(chan error, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		errChan <- ac.Forget(ctx, id, opts...)
		close(errChan)
	}()

	return errChan
}

// EraseAllAsync deletes all of a user's memories asynchronously.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - opts: Options (WithUserIDForErase required)
//
// Returns:
//   - <-chan *EraseResult: Channel that receives the deleted count and error
func (ac *AsyncClient) EraseAllAsync(ctx context.Context, opts ...EraseOption) <-chan *EraseResult {
	resultChan := make(chan *EraseResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		deleted, err := ac.EraseAll(ctx, opts...)
		resultChan <- &EraseResult{
			Deleted: deleted,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// EraseBeforeAsync deletes a user's memories older than the cutoff
// asynchronously.
func (ac *AsyncClient) EraseBeforeAsync(ctx context.Context, cutoff time.Time, opts ...EraseOption) <-chan *EraseResult {
	resultChan := make(chan *EraseResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		deleted, err := ac.EraseBefore(ctx, cutoff, opts...)
		resultChan <- &EraseResult{
			Deleted: deleted,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait waits for all asynchronous operations to complete.
//
// This method blocks until all goroutines started by async methods have
// finished. It should be called before program exit to ensure all operations
// complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close closes the asynchronous client.
//
// It first waits for all asynchronous operations to complete, then closes
// the underlying client.
func (ac *AsyncClient) Close() error {
	ac.Wait()
	return ac.Client.Close()
}

// MemoryResult contains the result of an asynchronous memory operation.
type MemoryResult struct {
	// Memory is the memory returned by the operation (nil if error occurred).
	Memory *Memory

	// Error is the error returned by the operation (nil on success).
	Error error
}

// RecallResult contains the result of an asynchronous recall operation.
type RecallResult struct {
	// Context is the rendered memory-context block ("" when nothing is
	// relevant).
	Context string

	// Error is the error returned by the operation (nil on success).
	Error error
}

// EraseResult contains the result of an asynchronous erase operation.
type EraseResult struct {
	// Deleted is the number of memories removed.
	Deleted int64

	// Error is the error returned by the operation (nil on success).
	Error error
}

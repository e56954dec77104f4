package asset

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Load drains q and applies the resulting commits in the order they were
// produced. If a loader or a commit fails, everything the batch stored is
// discarded, the rest of the queue is dropped and the error names the
// failing request. ctx is checked between requests only.
func Load(ctx context.Context, q *Queue, c *Committer) error {
	var commits []Commit
	for q.HasNext() {
		if err := ctx.Err(); err != nil {
			q.Clear()
			return err
		}
		commit, err := q.ProcessNext()
		if err != nil {
			q.Clear()
			return err
		}
		commits = append(commits, commit)
	}

	b := c.Begin()
	for _, commit := range commits {
		if err := ctx.Err(); err != nil {
			b.Discard()
			return err
		}
		if err := c.Apply(b, commit); err != nil {
			c.log().WithError(err).WithField("discarded", b.Len()).Warn("asset batch failed")
			b.Discard()
			return err
		}
	}

	c.log().WithFields(logrus.Fields{
		"requests": len(commits),
		"stored":   b.Len(),
	}).Debug("asset batch committed")
	b.Done()
	return nil
}

// Result carries one commit, or the error that ended a LoadAsync run.
type Result struct {
	Commit Commit
	Err    error
}

// LoadAsync drains q on a new goroutine and sends commits as they are
// produced. The channel is closed after the last commit or after the
// first error. q belongs to that goroutine until the channel is closed.
func LoadAsync(ctx context.Context, q *Queue) <-chan Result {
	results := make(chan Result)
	go func() {
		defer close(results)
		for q.HasNext() {
			if err := ctx.Err(); err != nil {
				q.Clear()
				send(ctx, results, Result{Err: err})
				return
			}
			commit, err := q.ProcessNext()
			if err != nil {
				q.Clear()
				send(ctx, results, Result{Err: err})
				return
			}
			if !send(ctx, results, Result{Commit: commit}) {
				q.Clear()
				return
			}
		}
	}()
	return results
}

func send(ctx context.Context, results chan<- Result, r Result) bool {
	select {
	case results <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stream is Load with the loaders running on another goroutine while
// commits are applied on the calling one as they arrive.
func Stream(ctx context.Context, q *Queue, c *Committer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := LoadAsync(ctx, q)
	b := c.Begin()
	fail := func(err error) error {
		cancel()
		for range results {
		}
		b.Discard()
		return err
	}

	for r := range results {
		if r.Err != nil {
			return fail(r.Err)
		}
		if err := c.Apply(b, r.Commit); err != nil {
			return fail(err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	b.Done()
	return nil
}

package notify

import (
	"bufio"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// DedupLog is the durable record of games that have already been announced:
// an append-only text file with one identifier per line. Entries are never
// deleted. Every operation takes an exclusive file lock; NotifyOnce holds it
// across the whole check, send and append, so overlapping runs cannot both
// announce the same game.
type DedupLog struct {
	path string
	lock *flock.Flock
}

// NewDedupLog opens (or will create on first write) the log at path.
func NewDedupLog(path string) *DedupLog {
	return &DedupLog{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// AlreadyNotified reports whether an identifier was recorded by any prior
// run, including runs from other process invocations.
func (d *DedupLog) AlreadyNotified(id string) (bool, error) {
	if err := d.lock.Lock(); err != nil {
		return false, fmt.Errorf("failed to lock notification log: %w", err)
	}
	defer d.lock.Unlock()

	ids, err := d.read()
	if err != nil {
		return false, err
	}
	_, ok := ids[id]
	return ok, nil
}

// RecordNotified durably appends an identifier. Call only after the
// notification send has been confirmed successful. Recording an identifier
// that is already present is a no-op, so a retried record stays safe.
func (d *DedupLog) RecordNotified(id string) error {
	if err := d.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock notification log: %w", err)
	}
	defer d.lock.Unlock()

	ids, err := d.read()
	if err != nil {
		return err
	}
	if _, ok := ids[id]; ok {
		return nil
	}
	return d.append(id)
}

// NotifyOnce runs send for an identifier at most once across all runs of the
// process, past and concurrent. The exclusive lock is held from the check
// through the send to the append, so two overlapping runs cannot both
// conclude a game is unannounced and both send. Returns whether send ran.
// A send error is returned without recording, so the next run retries it.
func (d *DedupLog) NotifyOnce(id string, send func() error) (bool, error) {
	if err := d.lock.Lock(); err != nil {
		return false, fmt.Errorf("failed to lock notification log: %w", err)
	}
	defer d.lock.Unlock()

	ids, err := d.read()
	if err != nil {
		return false, err
	}
	if _, ok := ids[id]; ok {
		return false, nil
	}

	if err := send(); err != nil {
		return false, err
	}
	return true, d.append(id)
}

// append durably writes one identifier. Callers hold the lock.
func (d *DedupLog) append(id string) error {
	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open notification log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, id); err != nil {
		return fmt.Errorf("failed to append to notification log: %w", err)
	}
	return f.Sync()
}

// read loads every recorded identifier. A missing file is an empty log.
func (d *DedupLog) read() (map[string]struct{}, error) {
	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to open notification log: %w", err)
	}
	defer f.Close()

	ids := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			ids[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notification log: %w", err)
	}
	return ids, nil
}

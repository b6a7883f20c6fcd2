package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"mediastudio/internal/apiclient"
)

// Device is an audio capture source. Release must stop every track and be
// safe to call more than once.
type Device interface {
	// Start acquires the device and begins capturing.
	Start(ctx context.Context) error
	// Finish stops capturing and returns the recorded clip.
	Finish() (apiclient.Upload, error)
	// Release frees the device.
	Release() error
}

// FileDevice replays a recorded audio file as a capture source.
type FileDevice struct {
	Path string

	mu       sync.Mutex
	file     *os.File
	released bool
}

// NewFileDevice returns a device that captures the contents of path.
func NewFileDevice(path string) *FileDevice {
	return &FileDevice{Path: path}
}

// Start opens the file.
func (d *FileDevice) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file != nil {
		return errors.New("device already started")
	}
	file, err := os.Open(d.Path)
	if err != nil {
		return fmt.Errorf("open audio source: %w", err)
	}
	d.file = file
	d.released = false
	return nil
}

// Finish reads the captured audio.
func (d *FileDevice) Finish() (apiclient.Upload, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return apiclient.Upload{}, errors.New("device not started")
	}
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return apiclient.Upload{}, fmt.Errorf("rewind audio source: %w", err)
	}
	content, err := io.ReadAll(d.file)
	if err != nil {
		return apiclient.Upload{}, fmt.Errorf("read audio source: %w", err)
	}
	return apiclient.Upload{Filename: filepath.Base(d.Path), Content: content}, nil
}

// Release closes the file.
func (d *FileDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Released reports whether the device has been released since its last Start.
func (d *FileDevice) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

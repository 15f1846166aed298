package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const chunkExt = ".chunk"

// Disk stores each key as a directory of numbered chunk files.
type Disk struct {
	root string
}

// NewDisk creates root if needed.
func NewDisk(root string) (*Disk, error) {
	if root == "" {
		return nil, errors.New("sink: disk store needs a directory")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &Disk{root: root}, nil
}

// dir maps key to a single directory below root. "." and ".." are
// escaped so no key can name root or its parent.
func (d *Disk) dir(key string) (string, error) {
	name := url.PathEscape(key)
	switch name {
	case "":
		return "", errors.New("sink: empty key")
	case ".", "..":
		name = strings.ReplaceAll(name, ".", "%2E")
	}
	return filepath.Join(d.root, name), nil
}

func chunkIndex(name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(name, chunkExt))
	return n, err == nil && n >= 0
}

func (d *Disk) Write(_ context.Context, key string, index int, data []byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	dir, err := d.dir(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	// Write through a temp file so a crashed write never leaves a short chunk.
	final := filepath.Join(dir, fmt.Sprintf("%010d%s", index, chunkExt))
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), final)
}

func (d *Disk) chunkFiles(key string) ([]string, error) {
	dir, err := d.dir(key)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	type chunk struct {
		index int
		path  string
	}
	var chunks []chunk
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), chunkExt) {
			continue
		}
		if i, ok := chunkIndex(e.Name()); ok {
			chunks = append(chunks, chunk{index: i, path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })

	names := make([]string, len(chunks))
	for i, c := range chunks {
		names[i] = c.path
	}
	return names, nil
}

func (d *Disk) Open(_ context.Context, key string) (io.ReadCloser, error) {
	names, err := d.chunkFiles(key)
	if err != nil {
		return nil, err
	}
	return &fileChain{names: names}, nil
}

func (d *Disk) Exists(_ context.Context, key string) (bool, error) {
	dir, err := d.dir(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(dir)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (d *Disk) Delete(_ context.Context, key string) error {
	dir, err := d.dir(key)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (d *Disk) Close() error { return nil }

// fileChain reads a list of files one after another, keeping one open.
type fileChain struct {
	names []string
	cur   *os.File
}

func (c *fileChain) Read(p []byte) (int, error) {
	for {
		if c.cur == nil {
			if len(c.names) == 0 {
				return 0, io.EOF
			}
			f, err := os.Open(c.names[0])
			if err != nil {
				return 0, err
			}
			c.names = c.names[1:]
			c.cur = f
		}
		n, err := c.cur.Read(p)
		if errors.Is(err, io.EOF) {
			c.cur.Close()
			c.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *fileChain) Close() error {
	if c.cur != nil {
		err := c.cur.Close()
		c.cur = nil
		return err
	}
	return nil
}

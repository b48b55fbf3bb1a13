// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/nxgtw/go-rawshm/internal/logger"
	"github.com/nxgtw/go-rawshm/internal/metrics"

	"github.com/pkg/errors"
)

var idCounter atomic.Int64

// Conf describes a mapping to create or open.
// Its setters return the receiver, so that they can be chained.
type Conf struct {
	size             int
	osID             string
	flink            string
	forceCreateFlink bool
	strictSize       bool
	perm             os.FileMode
	log              *logger.Logger
}

// NewConf returns a configuration with default permissions and the default logger.
func NewConf() *Conf {
	return &Conf{perm: 0666}
}

// Size sets the size of the mapping. On open, 0 means 'the size of the existing mapping'.
func (c *Conf) Size(size int) *Conf {
	c.size = size
	return c
}

// OSID sets the os id of the mapping. If it is empty on create, a unique id is generated.
func (c *Conf) OSID(id string) *Conf {
	c.osID = id
	return c
}

// Flink sets the path of the link file, which holds the os id.
func (c *Conf) Flink(path string) *Conf {
	c.flink = path
	return c
}

// ForceCreateFlink makes Create overwrite an existing link file.
func (c *Conf) ForceCreateFlink() *Conf {
	c.forceCreateFlink = true
	return c
}

// StrictSize makes Open fail with SizeMismatchError, if the mapping is smaller, than the requested size.
func (c *Conf) StrictSize() *Conf {
	c.strictSize = true
	return c
}

// Perm sets permissions of a new mapping. Ignored on windows.
func (c *Conf) Perm(perm os.FileMode) *Conf {
	c.perm = perm
	return c
}

// Logger sets the logger for the mapping.
func (c *Conf) Logger(l *logger.Logger) *Conf {
	c.log = l
	return c
}

func (c *Conf) logger() *logger.Logger {
	if c.log != nil {
		return c.log
	}
	return logger.Default()
}

// Create creates a new mapping. The returned handle is an owner.
// It fails with ErrMappingIDExists or ErrLinkExists, if the mapping already exists.
func (c *Conf) Create() (*Handle, error) {
	if c.size <= 0 {
		return nil, ErrSizeZero
	}
	log := c.logger()
	var link *os.File
	var err error
	if c.flink != "" {
		if link, err = createLink(c.flink, c.forceCreateFlink); err != nil {
			return nil, err
		}
	}
	id := c.osID
	if id == "" {
		id = uniqueID()
	}
	r, err := createRegion(id, c.size, c.perm, log)
	if err != nil {
		if link != nil {
			logIfFailed(log, id, "close link", link.Close())
			logIfFailed(log, id, "remove link", removeLink(c.flink))
		}
		return nil, err
	}
	if link != nil {
		if err = writeLink(link, id); err != nil {
			logIfFailed(log, id, "unmap", r.unmap())
			logIfFailed(log, id, "close", r.close())
			logIfFailed(log, id, "remove", r.remove())
			logIfFailed(log, id, "remove link", removeLink(c.flink))
			return nil, err
		}
	}
	metrics.MappingsCreated.Inc()
	log.Debug("mapping created", "id", id, "size", r.size(), "flink", c.flink)
	return newHandle(id, c.flink, r, true, log), nil
}

// Open opens an existing mapping by its link file or os id. The returned handle is not an owner.
// If the requested size is 0 or exceeds the size of the mapping, the size of the mapping is used.
func (c *Conf) Open() (*Handle, error) {
	log := c.logger()
	id := c.osID
	if c.flink != "" {
		var err error
		if id, err = readLink(c.flink); err != nil {
			return nil, err
		}
	} else if id == "" {
		return nil, ErrNoLinkOrID
	}
	r, err := openRegion(id, c.size, c.strictSize, log)
	if err != nil {
		return nil, err
	}
	if r.size() != c.size {
		log.Debug("mapping size corrected", "id", id, "requested", c.size, "actual", r.size())
	}
	metrics.MappingsOpened.Inc()
	log.Debug("mapping opened", "id", id, "size", r.size(), "flink", c.flink)
	return newHandle(id, c.flink, r, false, log), nil
}

// CreateOrOpen tries to create the mapping. If it already exists, it is opened.
// The creator becomes the owner. Callers, which lose the race, must treat its layout as authoritative.
func (c *Conf) CreateOrOpen() (*Handle, error) {
	h, err := c.Create()
	if err == nil {
		return h, nil
	}
	switch {
	case errors.Is(err, ErrMappingIDExists):
		// the link file was not written, so the mapping can only be found by its id.
		c.logger().Debug("mapping id exists, opening", "id", c.osID)
		open := *c
		open.flink = ""
		return open.Open()
	case errors.Is(err, ErrLinkExists):
		c.logger().Debug("link exists, opening", "flink", c.flink)
		return c.Open()
	}
	return nil, err
}

// CreateOrOpen creates or opens a mapping with the given os id.
func CreateOrOpen(id string, size int) (*Handle, error) {
	return NewConf().OSID(id).Size(size).CreateOrOpen()
}

// Open opens an existing mapping with the given os id. size may be 0.
func Open(id string, size int) (*Handle, error) {
	return NewConf().OSID(id).Size(size).Open()
}

func uniqueID() string {
	return fmt.Sprintf("shmem_%d_%x", os.Getpid(), time.Now().UnixNano()+idCounter.Add(1))
}

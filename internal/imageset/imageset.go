// Package imageset holds the working set of images for one form session: an
// ordered mix of references to images already stored by the backend and
// local files attached in this session but not yet uploaded.
package imageset

import (
	"errors"

	"github.com/google/uuid"
)

// Image is one member of the working set. Exactly two implementations
// exist: Remote and Local. Operations switch on the concrete type.
type Image interface {
	imageRef()
}

// Remote references an image already stored server-side.
type Remote struct {
	URL string
}

// Local is a file attached in this session, destined for the next submit.
type Local struct {
	Name        string
	ContentType string
	Data        []byte
}

func (Remote) imageRef() {}
func (Local) imageRef()  {}

var (
	ErrIndexOutOfRange = errors.New("imageset: index out of range")
	ErrClosed          = errors.New("imageset: set is closed")
)

type element struct {
	img    Image
	handle string
}

// Set preserves append order end-to-end: the order images are added is the
// order they are previewed, submitted and displayed.
type Set struct {
	elems   []element
	handles []string
	closed  bool
}

func New() *Set {
	return &Set{}
}

// FromURLs seeds a set with the stored image references of an existing
// post, in stored order. Used when an edit session opens.
func FromURLs(urls []string) *Set {
	s := New()
	for _, u := range urls {
		s.elems = append(s.elems, element{img: Remote{URL: u}})
	}
	return s
}

// Append concatenates local files onto the set. Prior order is preserved
// and duplicates are not filtered.
func (s *Set) Append(files ...Local) {
	for _, f := range files {
		s.elems = append(s.elems, element{img: f})
	}
}

func (s *Set) Len() int {
	return len(s.elems)
}

// Images returns the ordered working set.
func (s *Set) Images() []Image {
	out := make([]Image, len(s.elems))
	for i, e := range s.elems {
		out[i] = e.img
	}
	return out
}

// RemoveAt splices out the element at index i and reports whether the
// removal is reflected on the backend. Dropping a pending local file is
// final; removing a Remote only changes what the client shows — the stored
// image is not deleted, and callers should tell the user so.
func (s *Set) RemoveAt(i int) (Image, bool, error) {
	if i < 0 || i >= len(s.elems) {
		return nil, false, ErrIndexOutOfRange
	}

	removed := s.elems[i]
	s.elems = append(s.elems[:i], s.elems[i+1:]...)

	switch img := removed.img.(type) {
	case Local:
		return img, true, nil
	case Remote:
		return img, false, nil
	default:
		return removed.img, false, nil
	}
}

// Preview returns a displayable handle for the element at index i. Remote
// references pass through unchanged; local files get a transient handle
// that stays valid until the set is closed. Previewing the same element
// twice reuses its handle.
func (s *Set) Preview(i int) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if i < 0 || i >= len(s.elems) {
		return "", ErrIndexOutOfRange
	}

	switch img := s.elems[i].img.(type) {
	case Remote:
		return img.URL, nil
	case Local:
		if s.elems[i].handle == "" {
			handle := "mem://" + uuid.New().String()
			s.elems[i].handle = handle
			s.handles = append(s.handles, handle)
		}
		return s.elems[i].handle, nil
	default:
		return "", ErrIndexOutOfRange
	}
}

// WireImages returns the ordered local files to be encoded into the next
// submit. Remote references are already stored and are never re-sent.
func (s *Set) WireImages() []Local {
	var out []Local
	for _, e := range s.elems {
		if img, ok := e.img.(Local); ok {
			out = append(out, img)
		}
	}
	return out
}

// OpenHandles reports how many preview handles are currently allocated.
// Handles live until Close; a session that never closes its set leaks them.
func (s *Set) OpenHandles() int {
	return len(s.handles)
}

// Close releases every preview handle. The set must not be used afterwards.
func (s *Set) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.handles = nil
	for i := range s.elems {
		s.elems[i].handle = ""
	}
}

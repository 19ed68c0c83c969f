// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness reactor. The completion ring's dispatcher
// parks operations that would block and uses the reactor to learn when
// their descriptors become ready again.

package reactor

// Interest is the set of readiness conditions watched for a descriptor.
type Interest uint8

const (
	Read Interest = 1 << iota
	Write
)

// Event is one readiness notification returned by Wait.
type Event struct {
	Fd    int
	Ready Interest
}

// EventReactor defines readiness registration across OS platforms.
type EventReactor interface {
	// Add starts watching fd for the given interest set.
	Add(fd int, interest Interest) error

	// Mod replaces the interest set of an already watched fd.
	Mod(fd int, interest Interest) error

	// Del stops watching fd.
	Del(fd int) error

	// Wait blocks up to timeoutMs (negative = forever) and fills
	// events with ready descriptors. Returns the number written.
	Wait(events []Event, timeoutMs int) (int, error)

	// Close releases the reactor's kernel resources.
	Close() error
}

//go:build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import "golang.org/x/sys/unix"

// linuxReactor is a level-triggered epoll reactor.
type linuxReactor struct {
	epfd int
}

// NewReactor constructs the platform reactor for Linux.
func NewReactor() (EventReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &linuxReactor{epfd: epfd}, nil
}

func epollEvents(interest Interest) uint32 {
	var ev uint32
	if interest&Read != 0 {
		ev |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest&Write != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// Add starts watching fd.
func (r *linuxReactor) Add(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// Mod replaces the interest set of fd.
func (r *linuxReactor) Mod(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// Del stops watching fd.
func (r *linuxReactor) Del(fd int) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks for readiness events. Error and hangup conditions are
// reported as both readable and writable so parked operations retry
// and surface the real errno from the retried syscall.
func (r *linuxReactor) Wait(events []Event, timeoutMs int) (int, error) {
	raw := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(r.epfd, raw, timeoutMs)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		var ready Interest
		if raw[i].Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
			ready |= Read
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			ready |= Write
		}
		if raw[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			ready |= Read | Write
		}
		events[i] = Event{Fd: int(raw[i].Fd), Ready: ready}
	}
	return n, nil
}

// Close closes the epoll instance.
func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}

package service

import "sync"

// MeetingLocks hands out one mutex per meeting code. Join and EndMeeting
// serialize on the same lock: without that a join that passed the active
// check could insert a connected participant after the end cascade has
// already disconnected everyone.
type MeetingLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMeetingLocks() *MeetingLocks {
	return &MeetingLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *MeetingLocks) Get(meetingID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[meetingID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[meetingID] = lock
	}
	return lock
}

/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package rpc

import "sync"

// FakePublisher is a Publisher implementation that records every
// published notification in memory, for use by tests in pkg/reporter
// and pkg/ambient that need to assert on published payloads without a
// real broker.
type FakePublisher struct {
	mu            sync.Mutex
	Notifications []Notification
	FailNext      bool
}

// Notification is one recorded call to PublishNotification.
type Notification struct {
	Node    string
	Name    string
	QoS     QoS
	Payload []byte
}

func (f *FakePublisher) PublishNotification(node, name string, qos QoS, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNext {
		f.FailNext = false
		return errPublishFailed
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	f.Notifications = append(f.Notifications, Notification{Node: node, Name: name, QoS: qos, Payload: cp})
	return nil
}

// Last returns the most recently recorded notification, or the zero
// value and false if none were recorded.
func (f *FakePublisher) Last() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Notifications) == 0 {
		return Notification{}, false
	}
	return f.Notifications[len(f.Notifications)-1], true
}

// Count returns the number of notifications recorded for the given
// node.
func (f *FakePublisher) Count(node string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, note := range f.Notifications {
		if note.Node == node {
			n++
		}
	}
	return n
}

type publishError string

func (e publishError) Error() string { return string(e) }

var errPublishFailed = publishError("rpc: simulated publish failure")
